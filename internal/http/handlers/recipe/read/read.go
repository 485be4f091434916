// Package read реализует HTTP-обработчик получения рецепта по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/foodgram/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodgram/internal/http/request"
	"github.com/magabrotheeeer/foodgram/internal/http/response"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// Service описывает интерфейс чтения рецепта.
type Service interface {
	Get(ctx context.Context, ident models.Identity, id int64) (models.RecipeView, error)
}

// Handler обрабатывает GET /api/recipes/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Рецепт по ID
// @Tags Recipes
// @Produce json
// @Param id path int true "ID рецепта"
// @Success 200 {object} models.RecipeView
// @Failure 404 {object} response.ErrorResponse
// @Router /api/recipes/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipe.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.BadRequest(w, r, log, "invalid id", err)
		return
	}

	view, err := h.service.Get(r.Context(), middlewarectx.IdentityFrom(r.Context()), id)
	if err != nil {
		response.Fail(w, r, log, err, "could not read recipe")
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}
