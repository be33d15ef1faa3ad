package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube-server/internal/apierr"
	"vidtube-server/internal/repository"
	"vidtube-server/internal/repository/sqlite"
	"vidtube-server/internal/storage"
)

// fakeStorage records uploads; failOn makes the n-th upload call fail (1-based).
type fakeStorage struct {
	uploads []string
	calls   int
	failOn  int
}

func (f *fakeStorage) Upload(_ context.Context, body io.Reader, opts storage.UploadOptions) (string, error) {
	f.calls++
	if f.failOn != 0 && f.calls == f.failOn {
		return "", fmt.Errorf("upload refused")
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, opts.Key)
	return "https://cdn.test/" + opts.Key, nil
}

func (f *fakeStorage) Delete(context.Context, string, string) error { return nil }

func newRegisterEnv(t *testing.T, store storage.Service) (RegisterService, repository.UserRepository) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))

	return NewRegisterService(repo, store, UploadConfig{Bucket: "media", KeyPrefix: "uploads"}), repo
}

func validInput() RegisterInput {
	return RegisterInput{
		FullName: "Alice Example",
		Email:    "a@x.com",
		Username: "Alice",
		Password: "password",
	}
}

func avatarFile() *FileUpload {
	return &FileUpload{Name: "avatar.png", ContentType: "image/png", Body: strings.NewReader("png-bytes")}
}

func coverFile() *FileUpload {
	return &FileUpload{Name: "cover.jpg", ContentType: "image/jpeg", Body: strings.NewReader("jpg-bytes")}
}

func TestRegisterService_Register(t *testing.T) {
	t.Parallel()

	store := &fakeStorage{}
	svc, repo := newRegisterEnv(t, store)

	view, err := svc.Register(context.Background(), validInput(), avatarFile(), coverFile())
	require.NoError(t, err)

	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "Alice Example", view.FullName)
	assert.True(t, strings.HasPrefix(view.AvatarURL, "https://cdn.test/uploads/"))
	assert.True(t, strings.HasPrefix(view.CoverImageURL, "https://cdn.test/uploads/"))
	assert.Len(t, store.uploads, 2)

	stored, err := repo.GetByID(context.Background(), view.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password", stored.PasswordHash)
	assert.Empty(t, stored.RefreshToken)
}

func TestRegisterService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newRegisterEnv(t, &fakeStorage{})
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{name: "empty full name", mutate: func(in *RegisterInput) { in.FullName = "  " }},
		{name: "empty email", mutate: func(in *RegisterInput) { in.Email = "" }},
		{name: "empty username", mutate: func(in *RegisterInput) { in.Username = "" }},
		{name: "empty password", mutate: func(in *RegisterInput) { in.Password = " " }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := validInput()
			tt.mutate(&in)

			_, err := svc.Register(ctx, in, avatarFile(), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, apierr.ErrValidation)
		})
	}
}

func TestRegisterService_Register_MissingAvatar(t *testing.T) {
	t.Parallel()

	svc, _ := newRegisterEnv(t, &fakeStorage{})

	_, err := svc.Register(context.Background(), validInput(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrValidation)
}

func TestRegisterService_Register_Duplicate(t *testing.T) {
	t.Parallel()

	svc, _ := newRegisterEnv(t, &fakeStorage{})
	ctx := context.Background()

	_, err := svc.Register(ctx, validInput(), avatarFile(), nil)
	require.NoError(t, err)

	// same username, different email
	in := validInput()
	in.Email = "other@x.com"
	_, err = svc.Register(ctx, in, avatarFile(), nil)
	assert.ErrorIs(t, err, apierr.ErrConflict)

	// same email, different username
	in = validInput()
	in.Username = "other"
	_, err = svc.Register(ctx, in, avatarFile(), nil)
	assert.ErrorIs(t, err, apierr.ErrConflict)
}

func TestRegisterService_Register_AvatarUploadFailure(t *testing.T) {
	t.Parallel()

	svc, _ := newRegisterEnv(t, &fakeStorage{failOn: 1})

	_, err := svc.Register(context.Background(), validInput(), avatarFile(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrUpload)
}

func TestRegisterService_Register_CoverUploadFailureTolerated(t *testing.T) {
	t.Parallel()

	// avatar upload (call 1) succeeds, cover upload (call 2) fails
	svc, _ := newRegisterEnv(t, &fakeStorage{failOn: 2})

	view, err := svc.Register(context.Background(), validInput(), avatarFile(), coverFile())
	require.NoError(t, err)
	assert.NotEmpty(t, view.AvatarURL)
	assert.Empty(t, view.CoverImageURL)
}
