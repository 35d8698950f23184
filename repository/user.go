// Package repository issues the SQL behind the user endpoints.
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"users-service/model"
)

const (
	// DefaultLimit applies when the caller gives no positive limit.
	DefaultLimit = 100
	// MaxLimit caps a single page.
	MaxLimit = 1000
)

const (
	insertUserQuery = `INSERT INTO users (username, email) VALUES (?, ?) RETURNING id, username, email`
	listUsersQuery  = `SELECT id, username, email FROM users ORDER BY id ASC LIMIT ? OFFSET ?`
)

// UserRepository runs user queries on one session.
type UserRepository struct {
	tx *gorm.DB
}

// NewUserRepository binds the repository to a session obtained from
// db.Provider.WithSession.
func NewUserRepository(tx *gorm.DB) *UserRepository {
	if tx == nil {
		panic("repository: nil session")
	}
	return &UserRepository{tx: tx}
}

// Create inserts a user and returns it with the id the database assigned.
func (r *UserRepository) Create(ctx context.Context, in model.CreateUser) (*model.User, error) {
	var u model.User
	err := r.tx.WithContext(ctx).
		Raw(insertUserQuery, in.Username, in.Email).
		Row().
		Scan(&u.ID, &u.Username, &u.Email)
	if err != nil {
		if isUniqueViolation(r.tx, err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user %q: %w", in.Username, err)
	}
	return &u, nil
}

// List returns one page of users ordered by id.
func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	skip, limit = NormalizePage(skip, limit)

	rows, err := r.tx.WithContext(ctx).Raw(listUsersQuery, limit, skip).Rows()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// NormalizePage clamps pagination input to the accepted range.
func NormalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}
