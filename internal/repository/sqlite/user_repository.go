package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vidtube-server/internal/apierr"
	"vidtube-server/internal/domain"
	"vidtube-server/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	avatar_url TEXT NOT NULL DEFAULT '',
	cover_image_url TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	refresh_token TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, username, email, full_name, avatar_url, cover_image_url, password_hash, refresh_token, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.AvatarURL,
		user.CoverImageURL,
		user.PasswordHash,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return fmt.Errorf("%w: user with username or email already exists", apierr.ErrConflict)
		}
		return fmt.Errorf("%w: insert user: %v", apierr.ErrPersistence, err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, email, full_name, avatar_url, cover_image_url, password_hash, refresh_token, created_at, updated_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByIdentifier(ctx context.Context, username, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, email, full_name, avatar_url, cover_image_url, password_hash, refresh_token, created_at, updated_at
FROM users
WHERE username = ? OR email = ?`,
		strings.ToLower(username),
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`,
		token,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("%w: update refresh token: %v", apierr.ErrPersistence, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: user not found", apierr.ErrNotFound)
	}
	return nil
}

// RotateRefreshToken is the compare-and-swap guarding rotation-on-use.
// SQLite serializes writers, so the WHERE clause makes the read-compare-write
// atomic per user: of N concurrent rotations presenting the same token,
// exactly one update matches a row.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ? AND refresh_token = ?`,
		next,
		time.Now().UTC(),
		id,
		current,
	)
	if err != nil {
		return false, fmt.Errorf("%w: rotate refresh token: %v", apierr.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rotate rows affected: %v", apierr.ErrPersistence, err)
	}
	return n == 1, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.AvatarURL,
		&user.CoverImageURL,
		&user.PasswordHash,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user not found", apierr.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: scan user: %v", apierr.ErrPersistence, err)
	}
	return &user, nil
}
