// Package toggle реализует HTTP-обработчики добавления рецепта в избранное
// или список покупок и удаления из них. Добавление возвращает краткое
// представление рецепта со статусом 201, удаление отвечает 204 без тела.
package toggle

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

// AddFunc добавляет связь пользователя с рецептом.
type AddFunc func(ctx context.Context, ident models.Identity, recipeID int64) (models.RecipeShortView, error)

// RemoveFunc удаляет связь пользователя с рецептом.
type RemoveFunc func(ctx context.Context, ident models.Identity, recipeID int64) error

// AddHandler обрабатывает POST /api/recipes/{id}/<relation>.
type AddHandler struct {
	log  *slog.Logger
	name string
	add  AddFunc
}

// NewAdd создаёт AddHandler. name попадает в op логов: "favorite", "shopping_cart".
func NewAdd(log *slog.Logger, name string, add AddFunc) *AddHandler {
	return &AddHandler{log: log, name: name, add: add}
}

func (h *AddHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	op := "handlers.recipe." + h.name + ".add"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.BadRequest(w, r, log, "invalid id", err)
		return
	}

	view, err := h.add(r.Context(), middlewarectx.IdentityFrom(r.Context()), id)
	if err != nil {
		response.Fail(w, r, log, err, "could not add recipe to "+h.name)
		return
	}
	response.JSON(w, r, http.StatusCreated, view)
}

// RemoveHandler обрабатывает DELETE /api/recipes/{id}/<relation>.
type RemoveHandler struct {
	log    *slog.Logger
	name   string
	remove RemoveFunc
}

// NewRemove создаёт RemoveHandler.
func NewRemove(log *slog.Logger, name string, remove RemoveFunc) *RemoveHandler {
	return &RemoveHandler{log: log, name: name, remove: remove}
}

func (h *RemoveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	op := "handlers.recipe." + h.name + ".remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.BadRequest(w, r, log, "invalid id", err)
		return
	}

	if err = h.remove(r.Context(), middlewarectx.IdentityFrom(r.Context()), id); err != nil {
		response.Fail(w, r, log, err, "could not remove recipe from "+h.name)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
