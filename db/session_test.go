package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"users-service/testutil"
)

func newTestProvider(t *testing.T, name string) *Provider {
	t.Helper()
	p := NewProvider(testutil.OpenSQLite(t, name), testutil.Logger(t))
	require.NoError(t, EnsureSchema(context.Background(), p.DB(), testutil.Logger(t)))
	return p
}

func TestWithSession_ReleasesOnSuccess(t *testing.T) {
	p := newTestProvider(t, "session_success")
	ctx := context.Background()

	var inside int
	err := p.WithSession(ctx, func(tx *gorm.DB) error {
		inside = p.Stats().InUse
		return tx.Exec("INSERT INTO users (username, email) VALUES (?, ?)", "alice", "a@x.com").Error
	})
	require.NoError(t, err)
	require.Equal(t, 1, inside)
	require.Equal(t, 0, p.Stats().InUse)
}

func TestWithSession_ReleasesOnError(t *testing.T) {
	p := newTestProvider(t, "session_error")
	boom := errors.New("boom")

	err := p.WithSession(context.Background(), func(tx *gorm.DB) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrSessionUnavailable)
	require.Equal(t, 0, p.Stats().InUse)
}

func TestWithSession_ConnectionErrorFromFnIsNotUnavailable(t *testing.T) {
	p := newTestProvider(t, "session_fn_conn_error")

	err := p.WithSession(context.Background(), func(tx *gorm.DB) error {
		return sql.ErrConnDone
	})
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NotErrorIs(t, err, ErrSessionUnavailable)
	require.Equal(t, 0, p.Stats().InUse)
}

func TestWithSession_ContextReachesSession(t *testing.T) {
	p := newTestProvider(t, "session_context")
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "req-1")

	err := p.WithSession(ctx, func(tx *gorm.DB) error {
		require.Equal(t, "req-1", tx.Statement.Context.Value(key{}))
		return nil
	})
	require.NoError(t, err)
}

func TestWithSession_ReleasesOnPanic(t *testing.T) {
	p := newTestProvider(t, "session_panic")

	require.Panics(t, func() {
		_ = p.WithSession(context.Background(), func(tx *gorm.DB) error {
			panic("handler blew up")
		})
	})
	require.Equal(t, 0, p.Stats().InUse)
}

func TestWithSession_PinsOneConnection(t *testing.T) {
	p := newTestProvider(t, "session_pinned")

	err := p.WithSession(context.Background(), func(tx *gorm.DB) error {
		for i := 0; i < 5; i++ {
			var n int64
			if err := tx.Raw("SELECT count(*) FROM users").Row().Scan(&n); err != nil {
				return err
			}
		}
		require.Equal(t, 1, p.Stats().InUse)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 0, p.Stats().InUse)
}

func TestWithSession_Unavailable(t *testing.T) {
	p := newTestProvider(t, "session_unavailable")

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	called := false
	err := p.WithSession(ctx, func(tx *gorm.DB) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrSessionUnavailable)
	require.False(t, called)
	require.Equal(t, 0, p.Stats().InUse)
}

func TestWithSession_ClosedPool(t *testing.T) {
	p := newTestProvider(t, "session_closed")
	require.NoError(t, p.Close())

	err := p.WithSession(context.Background(), func(tx *gorm.DB) error { return nil })
	require.ErrorIs(t, err, ErrSessionUnavailable)
}
