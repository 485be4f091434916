// Package response содержит вспомогательные типы и функции для формирования
// JSON-ответов HTTP-обработчиков: единый формат ошибок и сопоставление
// ошибок предметной области со статусами HTTP.
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodgram/internal/lib/sl"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// ErrorResponse — тело ответа с ошибкой. Fields заполняется для ошибок валидации.
type ErrorResponse struct {
	Status string            `json:"status" example:"Error"`
	Error  string            `json:"error" example:"invalid request body"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует ответ с детализацией по полям.
func ValidationError(verr *models.ValidationError) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  "validation failed",
		Fields: verr.Fields,
	}
}

// StatusFor возвращает HTTP-статус для ошибки предметной области.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// JSON отправляет значение с указанным статусом.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// BadRequest отвечает 400 на тело или параметры, которые не удалось разобрать.
func BadRequest(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string, err error) {
	log.Info(msg, sl.Err(err))
	JSON(w, r, http.StatusBadRequest, Error(msg))
}

// Fail отвечает на ошибку сервиса. Внутренние ошибки логируются целиком,
// а клиенту уходит только fallback.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, fallback string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(fallback, sl.Err(err))
		JSON(w, r, status, Error(fallback))
		return
	}

	log.Info("request rejected", slog.Int("status", status), sl.Err(err))
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		JSON(w, r, status, ValidationError(verr))
		return
	}
	var derr *models.Error
	if errors.As(err, &derr) {
		JSON(w, r, status, Error(derr.Message))
		return
	}
	JSON(w, r, status, Error(err.Error()))
}
