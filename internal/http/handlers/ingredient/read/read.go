// Package read реализует HTTP-обработчик получения ингредиента по ID.
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

// Service описывает интерфейс чтения ингредиента.
type Service interface {
	GetIngredient(ctx context.Context, id int64) (models.Ingredient, error)
}

// Handler обрабатывает GET /api/ingredients/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ingredient.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.BadRequest(w, r, log, "invalid id", err)
		return
	}

	item, err := h.service.GetIngredient(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err, "could not read ingredient")
		return
	}
	response.JSON(w, r, http.StatusOK, item)
}
