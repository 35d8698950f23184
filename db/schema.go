package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"users-service/model"
)

// schemaLockKey serialises schema creation across processes on PostgreSQL.
const schemaLockKey int64 = 0x75736572 // "user"

const unlockTimeout = 5 * time.Second

// EnsureSchema creates the users table and its unique indexes when missing.
// Existing objects are left untouched, so calling it again is a no-op.
func EnsureSchema(ctx context.Context, gdb *gorm.DB, log *zap.SugaredLogger) error {
	if gdb == nil {
		return errors.New("ensure schema: nil database handle")
	}

	migrate := func(tx *gorm.DB) error {
		return tx.AutoMigrate(&model.User{})
	}

	log = log.Named("db")

	var err error
	if gdb.Dialector.Name() == "postgres" {
		err = withAdvisoryLock(gdb.WithContext(ctx), log, migrate)
	} else {
		err = migrate(gdb.WithContext(ctx))
	}
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	log.Infow("schema ready", "table", model.User{}.TableName())
	return nil
}

// withAdvisoryLock runs fn on a single connection holding a session-level
// advisory lock, so replicas starting together do not race on CREATE TABLE.
func withAdvisoryLock(gdb *gorm.DB, log *zap.SugaredLogger, fn func(tx *gorm.DB) error) error {
	return gdb.Connection(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_lock(?)", schemaLockKey).Error; err != nil {
			return fmt.Errorf("acquire schema lock: %w", err)
		}
		defer releaseSchemaLock(tx, log)

		return fn(tx)
	})
}

// releaseSchemaLock unlocks on the pinned connection even when the caller's
// context is already done. A connection whose unlock failed is discarded
// instead of going back to the pool.
func releaseSchemaLock(tx *gorm.DB, log *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(tx.Statement.Context), unlockTimeout)
	defer cancel()

	err := tx.WithContext(ctx).Exec("SELECT pg_advisory_unlock(?)", schemaLockKey).Error
	if err == nil {
		return
	}
	log.Errorw("release schema lock", "error", err)

	if conn, ok := tx.Statement.ConnPool.(*sql.Conn); ok {
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
}
