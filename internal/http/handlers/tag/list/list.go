// Package list реализует HTTP-обработчик списка тегов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/foodgram/internal/http/response"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// Service описывает интерфейс чтения тегов.
type Service interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// Handler обрабатывает GET /api/tags.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список тегов
// @Tags Tags
// @Produce json
// @Success 200 {array} models.Tag
// @Failure 500 {object} response.ErrorResponse
// @Router /api/tags [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tag.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		response.Fail(w, r, log, err, "could not list tags")
		return
	}
	response.JSON(w, r, http.StatusOK, tags)
}
