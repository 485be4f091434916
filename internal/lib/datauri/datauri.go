// Package datauri декодирует картинки, переданные строкой
// data:image/<ext>;base64,<payload>.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNotDataURI — строка не начинается с data:image/.
	ErrNotDataURI = errors.New("value is not an image data URI")
	// ErrBadExtension — подтип картинки не годится для имени файла.
	ErrBadExtension = errors.New("unsupported image type")
	// ErrEmptyPayload — после декодирования не осталось данных.
	ErrEmptyPayload = errors.New("empty image payload")
)

const prefix = "data:image/"

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// IsDataURI сообщает, похожа ли строка на data URI картинки.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, prefix)
}

// Decode возвращает байты картинки и расширение файла.
func Decode(s string) ([]byte, string, error) {
	const op = "datauri.Decode"
	if !IsDataURI(s) {
		return nil, "", fmt.Errorf("%s: %w", op, ErrNotDataURI)
	}
	header, payload, ok := strings.Cut(s, ";base64,")
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", op, ErrNotDataURI)
	}

	ext := NormalizeExt(strings.TrimPrefix(header, prefix))
	if !extPattern.MatchString(ext) {
		return nil, "", fmt.Errorf("%s: %w", op, ErrBadExtension)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%s: %w", op, ErrEmptyPayload)
	}
	return data, ext, nil
}

// NormalizeExt приводит подтип или расширение файла к единому виду.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "jpg" {
		return "jpeg"
	}
	return ext
}

// ValidExt сообщает, годится ли расширение для имени файла.
func ValidExt(ext string) bool {
	return extPattern.MatchString(ext)
}
