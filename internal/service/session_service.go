package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"vidtube-server/internal/apierr"
	"vidtube-server/internal/domain"
	"vidtube-server/internal/repository"
	"vidtube-server/internal/token"
)

// TokenPair is the access/refresh pair returned by login and rotation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService owns the token lifecycle: issuance on login, server-side
// invalidation on logout, and rotation-on-use for refresh tokens. The stored
// refresh token on the user record is the single source of truth; a signed
// token that does not match it is dead regardless of its embedded expiry.
type SessionService interface {
	Login(ctx context.Context, username, email, password string) (*TokenPair, *domain.PublicView, error)
	Logout(ctx context.Context, userID string) error
	Rotate(ctx context.Context, presentedToken string) (*TokenPair, error)
	GetUser(ctx context.Context, userID string) (*domain.PublicView, error)
}

type sessionService struct {
	users repository.UserRepository
	codec *token.Codec
}

func NewSessionService(users repository.UserRepository, codec *token.Codec) SessionService {
	return &sessionService{users: users, codec: codec}
}

func (s *sessionService) Login(ctx context.Context, username, email, password string) (*TokenPair, *domain.PublicView, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" && email == "" {
		return nil, nil, apierr.Validation("username or email is required")
	}

	user, err := s.users.GetByIdentifier(ctx, username, email)
	if err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid credentials", apierr.ErrUnauthorized)
	}

	pair, err := s.issueAndPersist(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	view := user.Public()
	return pair, &view, nil
}

func (s *sessionService) Logout(ctx context.Context, userID string) error {
	// Unconditional clear; calling twice is harmless.
	if err := s.users.SetRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (s *sessionService) Rotate(ctx context.Context, presentedToken string) (*TokenPair, error) {
	if presentedToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", apierr.ErrUnauthorized)
	}

	userID, err := s.codec.Verify(presentedToken, token.Refresh)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown token subject", apierr.ErrUnauthorized)
		}
		return nil, err
	}

	accessToken, err := s.codec.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrPersistence, err)
	}
	refreshToken, err := s.codec.IssueRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrPersistence, err)
	}

	// The conditional swap is the anti-replay check: the raw presented token
	// must still be the stored one. A token already rotated away (or cleared
	// by logout) matches nothing and fails here, never silently succeeds.
	swapped, err := s.users.RotateRefreshToken(ctx, userID, presentedToken, refreshToken)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, apierr.ErrTokenReused
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *sessionService) GetUser(ctx context.Context, userID string) (*domain.PublicView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := user.Public()
	return &view, nil
}

func (s *sessionService) issueAndPersist(ctx context.Context, userID string) (*TokenPair, error) {
	accessToken, err := s.codec.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrPersistence, err)
	}
	refreshToken, err := s.codec.IssueRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrPersistence, err)
	}
	// Full overwrite: issuing a new refresh token invalidates the prior one.
	if err := s.users.SetRefreshToken(ctx, userID, refreshToken); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
