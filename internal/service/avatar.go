package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"github.com/contacthub/contacthub-go/internal/model"
	"github.com/contacthub/contacthub-go/internal/repository"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

// AvatarStore is the subset of the user store the avatar service needs.
type AvatarStore interface {
	UpdateAvatar(ctx context.Context, userID int64, url string) (*model.User, error)
}

// ObjectStorage uploads a blob under a key and returns its public URL.
// It is satisfied by *storage.S3Client.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// AvatarService stores uploaded avatar images in object storage and records
// the resulting URL on the user.
type AvatarService struct {
	users   AvatarStore
	storage ObjectStorage
}

// NewAvatarService creates a new AvatarService.
func NewAvatarService(users AvatarStore, storage ObjectStorage) *AvatarService {
	return &AvatarService{users: users, storage: storage}
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload stores the image under a fresh per-user key and updates the user's
// avatar URL. Non-image content types are rejected before any storage access.
func (s *AvatarService) Upload(ctx context.Context, userID int64, contentType string, body io.Reader) (*model.User, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	key := path.Join("avatars", fmt.Sprintf("%d", userID), uuid.NewString()+ext)

	url, err := s.storage.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateAvatar(ctx, userID, url)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
