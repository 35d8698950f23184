package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateUser is returned when an insert violates the unique index on
// username or email.
var ErrDuplicateUser = errors.New("username or email already registered")

const pgUniqueViolation = "23505"

// isUniqueViolation recognises a unique-index rejection from PostgreSQL
// directly, and from any other driver through the dialect's error translator.
func isUniqueViolation(tx *gorm.DB, err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	if tr, ok := tx.Dialector.(gorm.ErrorTranslator); ok {
		return errors.Is(tr.Translate(err), gorm.ErrDuplicatedKey)
	}
	return false
}
