package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vidtube-server/internal/apierr"
	"vidtube-server/internal/domain"
	"vidtube-server/internal/repository"
	"vidtube-server/internal/storage"
)

// RegisterInput carries the text fields of a registration request.
type RegisterInput struct {
	FullName string
	Email    string
	Username string
	Password string
}

// FileUpload is an uploaded file ready to be streamed to object storage.
type FileUpload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadConfig tells the registrar where media files land.
type UploadConfig struct {
	Bucket    string
	KeyPrefix string
}

// RegisterService creates accounts: field validation, uniqueness check,
// media upload delegation, record creation.
type RegisterService interface {
	Register(ctx context.Context, in RegisterInput, avatar, coverImage *FileUpload) (*domain.PublicView, error)
}

type registerService struct {
	users   repository.UserRepository
	storage storage.Service
	uploads UploadConfig
}

func NewRegisterService(users repository.UserRepository, store storage.Service, uploads UploadConfig) RegisterService {
	return &registerService{users: users, storage: store, uploads: uploads}
}

func (s *registerService) Register(ctx context.Context, in RegisterInput, avatar, coverImage *FileUpload) (*domain.PublicView, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Password = strings.TrimSpace(in.Password)

	if in.FullName == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, apierr.Validation("all fields are required")
	}
	if avatar == nil || avatar.Body == nil {
		return nil, apierr.Validation("avatar is required")
	}

	if _, err := s.users.GetByIdentifier(ctx, in.Username, in.Email); err == nil {
		return nil, fmt.Errorf("%w: user with username or email already exists", apierr.ErrConflict)
	} else if !errors.Is(err, apierr.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", apierr.ErrPersistence, err)
	}

	avatarURL, err := s.uploadFile(ctx, avatar)
	if err != nil {
		return nil, fmt.Errorf("%w: avatar: %v", apierr.ErrUpload, err)
	}

	// Cover image is optional and its upload failure is tolerated.
	coverURL := ""
	if coverImage != nil && coverImage.Body != nil {
		if url, err := s.uploadFile(ctx, coverImage); err == nil {
			coverURL = url
		}
	}

	user := &domain.User{
		ID:            uuid.NewString(),
		Username:      in.Username,
		Email:         in.Email,
		FullName:      in.FullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		PasswordHash:  string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	created, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: read back created user: %v", apierr.ErrPersistence, err)
	}

	view := created.Public()
	return &view, nil
}

func (s *registerService) uploadFile(ctx context.Context, file *FileUpload) (string, error) {
	key := uuid.NewString() + strings.ToLower(path.Ext(file.Name))
	if s.uploads.KeyPrefix != "" {
		key = strings.Trim(s.uploads.KeyPrefix, "/") + "/" + key
	}
	return s.storage.Upload(ctx, file.Body, storage.UploadOptions{
		Bucket:      s.uploads.Bucket,
		Key:         key,
		ContentType: file.ContentType,
	})
}
