// Package list реализует HTTP-обработчик списка рецептов с фильтрами.
//
// Фильтры объединяются через AND: author (username), tags (один или несколько
// slug, через OR), is_favorited и is_in_shopping_cart. Для анонимного
// запроса два последних фильтра не применяются.
package list

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

// Service описывает интерфейс чтения списка рецептов.
type Service interface {
	List(ctx context.Context, ident models.Identity, f models.RecipeFilter) ([]models.RecipeView, error)
}

// Handler обрабатывает GET /api/recipes.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список рецептов
// @Tags Recipes
// @Produce json
// @Param author query string false "Username автора"
// @Param tags query []string false "Slug тегов" collectionFormat(multi)
// @Param is_favorited query int false "Только избранное"
// @Param is_in_shopping_cart query int false "Только из списка покупок"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {array} models.RecipeView
// @Failure 400 {object} response.ErrorResponse
// @Router /api/recipes [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipe.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset, err := request.Page(r)
	if err != nil {
		response.BadRequest(w, r, log, "invalid pagination parameters", err)
		return
	}

	filter := models.RecipeFilter{
		Author:           r.URL.Query().Get("author"),
		Tags:             request.Strings(r, "tags"),
		IsFavorited:      request.Flag(r, "is_favorited"),
		IsInShoppingCart: request.Flag(r, "is_in_shopping_cart"),
		Limit:            limit,
		Offset:           offset,
	}

	recipes, err := h.service.List(r.Context(), middlewarectx.IdentityFrom(r.Context()), filter)
	if err != nil {
		response.Fail(w, r, log, err, "could not list recipes")
		return
	}
	response.JSON(w, r, http.StatusOK, recipes)
}
