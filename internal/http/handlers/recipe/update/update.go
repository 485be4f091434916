// Package update реализует HTTP-обработчик частичного изменения рецепта.
// Менять рецепт может только его автор.
package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/foodgram/internal/http/handlers/recipe/form"
	"github.com/magabrotheeeer/foodgram/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodgram/internal/http/request"
	"github.com/magabrotheeeer/foodgram/internal/http/response"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// Service описывает интерфейс изменения рецепта.
type Service interface {
	Update(ctx context.Context, ident models.Identity, id int64, patch models.RecipePatch) (models.RecipeView, error)
}

// Handler обрабатывает PATCH /api/recipes/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Изменить рецепт
// @Description Переданные tags и ingredients полностью заменяют прежние наборы, остальные поля сохраняются.
// @Tags Recipes
// @Accept json,mpfd
// @Produce json
// @Param id path int true "ID рецепта"
// @Param request body models.RecipePatch true "Изменяемые поля"
// @Success 200 {object} models.RecipeView
// @Failure 403 {object} response.ErrorResponse "Рецепт принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/recipes/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipe.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.BadRequest(w, r, log, "invalid id", err)
		return
	}

	patch, err := form.DecodePatch(r)
	if err != nil {
		if errors.Is(err, form.ErrMalformed) {
			response.BadRequest(w, r, log, "invalid request body", err)
			return
		}
		response.Fail(w, r, log, err, "could not update recipe")
		return
	}

	view, err := h.service.Update(r.Context(), middlewarectx.IdentityFrom(r.Context()), id, patch)
	if err != nil {
		response.Fail(w, r, log, err, "could not update recipe")
		return
	}

	log.Info("recipe updated", slog.Int64("id", id))
	response.JSON(w, r, http.StatusOK, view)
}
