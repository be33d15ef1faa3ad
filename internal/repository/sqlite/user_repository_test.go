package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube-server/internal/apierr"
	"vidtube-server/internal/domain"
	"vidtube-server/internal/repository"
)

func newTestRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func testUser(username, email string) *domain.User {
	return &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "hash",
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	user := testUser("alice", "a@x.com")
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Empty(t, got.RefreshToken)

	got, err = repo.GetByIdentifier(ctx, "ALICE", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.GetByIdentifier(ctx, "", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetByIdentifier(ctx, "bob", "b@x.com")
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testUser("alice", "a@x.com")))

	err := repo.Create(ctx, testUser("alice", "other@x.com"))
	assert.ErrorIs(t, err, apierr.ErrConflict)

	err = repo.Create(ctx, testUser("other", "a@x.com"))
	assert.ErrorIs(t, err, apierr.ErrConflict)
}

func TestUserRepository_SetRefreshToken(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	user := testUser("alice", "a@x.com")
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "tok-1"))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.RefreshToken)

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, ""))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.RefreshToken)

	err = repo.SetRefreshToken(ctx, "missing-id", "tok")
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestUserRepository_RotateRefreshToken(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	user := testUser("alice", "a@x.com")
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "old"))

	swapped, err := repo.RotateRefreshToken(ctx, user.ID, "old", "new")
	require.NoError(t, err)
	assert.True(t, swapped)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.RefreshToken)

	// stale value no longer matches
	swapped, err = repo.RotateRefreshToken(ctx, user.ID, "old", "newer")
	require.NoError(t, err)
	assert.False(t, swapped)

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.RefreshToken)
}
