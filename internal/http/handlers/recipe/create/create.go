// Package create реализует HTTP-обработчик создания рецепта.
//
// Тело запроса — JSON с картинкой в виде data URI либо multipart/form-data
// с файлом. В ответ возвращается полное представление созданного рецепта.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/foodgram/internal/http/handlers/recipe/form"
	"github.com/magabrotheeeer/foodgram/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodgram/internal/http/response"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// Service описывает интерфейс создания рецепта.
type Service interface {
	Create(ctx context.Context, ident models.Identity, in models.RecipeInput) (models.RecipeView, error)
}

// Handler обрабатывает POST /api/recipes.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Создать рецепт
// @Tags Recipes
// @Accept json,mpfd
// @Produce json
// @Param request body models.RecipeInput true "Данные рецепта"
// @Success 201 {object} models.RecipeView
// @Failure 400 {object} response.ErrorResponse "Некорректное тело запроса"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /api/recipes [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipe.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	in, err := form.DecodeInput(r)
	if err != nil {
		if errors.Is(err, form.ErrMalformed) {
			response.BadRequest(w, r, log, "invalid request body", err)
			return
		}
		response.Fail(w, r, log, err, "could not create recipe")
		return
	}

	view, err := h.service.Create(r.Context(), middlewarectx.IdentityFrom(r.Context()), in)
	if err != nil {
		response.Fail(w, r, log, err, "could not create recipe")
		return
	}

	log.Info("recipe created", slog.Int64("id", view.ID))
	response.JSON(w, r, http.StatusCreated, view)
}
