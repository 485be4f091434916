package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Базовые виды ошибок предметной области. Слой HTTP сопоставляет их со статусами ответа.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("already exists")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("authentication required")
)

// Error — ошибка предметной области с человекочитаемым сообщением.
// Kind — один из базовых видов ошибок, по нему работает errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Conflictf формирует ошибку конфликта (повторная связь, занятое уникальное поле).
func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf формирует ошибку отсутствующего объекта.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbiddenf формирует ошибку недостатка прав.
func Forbiddenf(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized возвращает ошибку для анонимного запроса к защищённой операции.
func Unauthorized() error {
	return &Error{Kind: ErrUnauthorized, Message: "authentication credentials were not provided"}
}

// ValidationError описывает некорректные входные данные с детализацией по полям.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError создаёт ошибку валидации для одного поля.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add добавляет описание ошибки поля; повторное добавление перезаписывает сообщение.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// Empty сообщает, что ни одной ошибки не накоплено.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
