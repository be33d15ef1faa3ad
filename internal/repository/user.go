package repository

import (
	"context"

	"vidtube-server/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIdentifier matches either username (lowercased) or email, exact.
	GetByIdentifier(ctx context.Context, username, email string) (*domain.User, error)
	// SetRefreshToken overwrites the stored refresh token unconditionally.
	// An empty token marks the user as logged out.
	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken swaps the stored refresh token from current to next
	// in one conditional write. Returns false when the stored value no longer
	// equals current, i.e. the token was already rotated away or cleared.
	RotateRefreshToken(ctx context.Context, id, current, next string) (bool, error)
}
