package storage

import (
	"context"
	"devconnector/internal/config"
	"io"
)

// Storage сохраняет загруженный файл и возвращает ссылку, которую пишем в запись пользователя.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// New выбирает S3, если задан бакет, иначе локальную папку.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	if cfg.S3Bucket != "" {
		return NewS3Storage(ctx, cfg)
	}
	return NewLocalStorage(cfg.FileUploadPath), nil
}
