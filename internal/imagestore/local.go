package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Local хранит картинки в каталоге Root; файлы раздаются по URLPrefix.
type Local struct {
	Root      string
	URLPrefix string
}

// NewLocal создаёт локальное хранилище.
func NewLocal(root, urlPrefix string) *Local {
	return &Local{Root: root, URLPrefix: urlPrefix}
}

// Save записывает картинку и возвращает её URL.
func (l *Local) Save(ctx context.Context, ext string, data []byte) (string, error) {
	const op = "imagestore.Local.Save"
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := objectKey(ext)
	full := filepath.Join(l.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return l.URLPrefix + key, nil
}

// Delete удаляет картинку по URL. Отсутствующий файл не считается ошибкой.
func (l *Local) Delete(ctx context.Context, url string) error {
	const op = "imagestore.Local.Delete"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	key, err := keyFromURL(l.URLPrefix, url)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = os.Remove(filepath.Join(l.Root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
