// Package read реализует HTTP-обработчик получения тега по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/foodgram/internal/http/request"
	"github.com/magabrotheeeer/foodgram/internal/http/response"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// Service описывает интерфейс чтения тега.
type Service interface {
	GetTag(ctx context.Context, id int64) (models.Tag, error)
}

// Handler обрабатывает GET /api/tags/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Тег по ID
// @Tags Tags
// @Produce json
// @Param id path int true "ID тега"
// @Success 200 {object} models.Tag
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/tags/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tag.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.BadRequest(w, r, log, "invalid id", err)
		return
	}

	tag, err := h.service.GetTag(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err, "could not read tag")
		return
	}
	response.JSON(w, r, http.StatusOK, tag)
}
