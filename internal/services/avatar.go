package services

import (
	"context"
	"devconnector/internal/logger"
	"devconnector/internal/repository"
	"errors"
	"fmt"
	"io"
	"mime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStorage: куда складываются загруженные файлы.
type FileStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type AvatarStore interface {
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) error
}

// Upload: загруженный файл, как его видит сервис.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Расширение файла определяется типом содержимого, имя файла от клиента не используется.
var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type AvatarService struct {
	users   AvatarStore
	storage FileStorage
	maxSize int64
}

func NewAvatarService(users AvatarStore, storage FileStorage, maxSize int64) *AvatarService {
	return &AvatarService{users: users, storage: storage, maxSize: maxSize}
}

// Upload сохраняет аватар как avatar_<id><ext> и записывает ссылку пользователю.
func (s *AvatarService) Upload(ctx context.Context, userID uuid.UUID, f *Upload) (string, error) {
	log := logger.WithCtx(ctx)

	if f == nil || f.Body == nil {
		return "", errorf(ErrValidation, "No file uploaded")
	}
	mediaType, _, err := mime.ParseMediaType(f.ContentType)
	ext, ok := avatarExtensions[mediaType]
	if err != nil || !ok {
		log.Warn("Неподдерживаемый тип аватара (service)", zap.String("content_type", f.ContentType))
		return "", errorf(ErrValidation, "Please upload an image file")
	}
	if s.maxSize > 0 && f.Size > s.maxSize {
		return "", errorf(ErrValidation, "Image size must be less than %d", s.maxSize)
	}

	name := fmt.Sprintf("avatar_%s%s", userID, ext)
	ref, err := s.storage.Put(ctx, name, mediaType, f.Body)
	if err != nil {
		log.Error("Ошибка загрузки аватара (service)", zap.Error(err))
		return "", fmt.Errorf("store avatar: %w", err)
	}

	if err := s.users.UpdateAvatar(ctx, userID, ref); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("update avatar: %w", err)
	}

	log.Info("Аватар обновлён (service)", zap.String("avatar", ref))
	return ref, nil
}
