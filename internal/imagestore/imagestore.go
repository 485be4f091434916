// Package imagestore сохраняет картинки рецептов на локальный диск или в S3
// и возвращает публичный URL сохранённого файла.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/foodgram/internal/config"
)

// ErrForeignURL — URL не относится к этому хранилищу.
var ErrForeignURL = errors.New("url does not belong to the store")

// Store — хранилище картинок.
type Store interface {
	Save(ctx context.Context, ext string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// Хранилища картинок из конфигурации.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

const imagesDir = "recipes/images"

// New выбирает хранилище по cfg.Backend.
func New(ctx context.Context, cfg config.Media) (Store, error) {
	const op = "imagestore.New"

	switch cfg.Backend {
	case BackendLocal, "":
		return NewLocal(cfg.Root, cfg.URLPrefix), nil
	case BackendS3:
		s, err := NewS3(ctx, cfg.S3, cfg.URLPrefix)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%s: unknown backend %q", op, cfg.Backend)
	}
}

// objectKey формирует уникальный ключ файла картинки.
func objectKey(ext string) string {
	return path.Join(imagesDir, uuid.NewString()+"."+ext)
}

// keyFromURL отрезает префикс публичного URL и проверяет, что ключ лежит в каталоге картинок.
func keyFromURL(prefix, url string) (string, error) {
	if !strings.HasPrefix(url, prefix) {
		return "", ErrForeignURL
	}
	key := path.Clean(strings.TrimPrefix(url, prefix))
	if !strings.HasPrefix(key, imagesDir+"/") {
		return "", ErrForeignURL
	}
	return key, nil
}
