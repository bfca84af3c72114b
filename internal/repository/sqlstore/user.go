package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"
	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB stores accounts in the users table.
type UserDB struct {
	conn *sqlx.DB
}

// Create inserts a new user. ID and CreatedAt are generated here.
//
// The username column is UNIQUE, so two concurrent registrations of the same
// name cannot both succeed: the loser gets an apperror.ErrConflict error.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := u.conn.ExecContext(ctx, u.conn.Rebind(
		`INSERT INTO users (id, username, password_hash, created_at)
		 VALUES (?, ?, ?, ?)`),
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlstore: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (u *UserDB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User

	err := u.conn.GetContext(ctx, &user, u.conn.Rebind(
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlstore: getting user %s: %w", id, err)
	}

	return &user, nil
}

// GetByUsername retrieves a user by login name.
// Returns apperror.ErrNotFound if the name is unknown.
func (u *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User

	err := u.conn.GetContext(ctx, &user, u.conn.Rebind(
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlstore: getting user %q: %w", username, err)
	}

	return &user, nil
}

// UsernameExists reports whether the name is already taken.
func (u *UserDB) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int
	err := u.conn.GetContext(ctx, &count, u.conn.Rebind(
		`SELECT COUNT(*) FROM users WHERE username = ?`), username)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking username %q: %w", username, err)
	}
	return count > 0, nil
}
