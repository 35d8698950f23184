package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrSessionUnavailable is returned when no connection could be taken from
// the pool (pool exhausted until ctx expired, database gone, handle closed).
var ErrSessionUnavailable = errors.New("database session unavailable")

// WithSession pins one pooled connection for the duration of fn and returns it
// to the pool when fn returns, fails or panics. The session passed to fn must
// not be used after fn returns.
func (p *Provider) WithSession(ctx context.Context, fn func(tx *gorm.DB) error) error {
	acquired := false
	err := p.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		acquired = true
		return fn(tx)
	})
	if err != nil && !acquired {
		p.log.Warnw("acquire session", "error", err)
		return fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	return err
}
