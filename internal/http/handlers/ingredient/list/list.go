// Package list реализует HTTP-обработчик списка ингредиентов
// с поиском по началу названия.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/foodgram/internal/http/response"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// Service описывает интерфейс поиска ингредиентов.
type Service interface {
	ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
}

// Handler обрабатывает GET /api/ingredients?name=prefix.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список ингредиентов
// @Description Поиск без учёта регистра по началу названия.
// @Tags Ingredients
// @Produce json
// @Param name query string false "Начало названия"
// @Success 200 {array} models.Ingredient
// @Failure 500 {object} response.ErrorResponse
// @Router /api/ingredients [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ingredient.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	items, err := h.service.ListIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		response.Fail(w, r, log, err, "could not list ingredients")
		return
	}
	response.JSON(w, r, http.StatusOK, items)
}
