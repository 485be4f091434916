// Package subscribe реализует HTTP-обработчики подписки на автора и отписки.
package subscribe

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

// Service описывает интерфейс подписок.
type Service interface {
	Subscribe(ctx context.Context, ident models.Identity, authorID int64, recipesLimit int) (models.AuthorView, error)
	Unsubscribe(ctx context.Context, ident models.Identity, authorID int64) error
}

// Handler обрабатывает POST и DELETE /api/users/{id}/subscribe.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Subscribe godoc
// @Summary Подписаться на автора
// @Tags Users
// @Produce json
// @Param id path int true "ID автора"
// @Param recipes_limit query int false "Сколько рецептов автора вернуть"
// @Success 201 {object} models.AuthorView
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Подписка уже есть или подписка на себя"
// @Router /api/users/{id}/subscribe [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.subscribe"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	authorID, err := request.ID(r, "id")
	if err != nil {
		response.BadRequest(w, r, log, "invalid id", err)
		return
	}
	recipesLimit, err := request.Int(r, "recipes_limit")
	if err != nil {
		response.BadRequest(w, r, log, "invalid recipes_limit", err)
		return
	}

	author, err := h.service.Subscribe(r.Context(), middlewarectx.IdentityFrom(r.Context()), authorID, recipesLimit)
	if err != nil {
		response.Fail(w, r, log, err, "could not subscribe")
		return
	}
	response.JSON(w, r, http.StatusCreated, author)
}

// Unsubscribe godoc
// @Summary Отписаться от автора
// @Tags Users
// @Param id path int true "ID автора"
// @Success 204
// @Failure 404 {object} response.ErrorResponse "Подписки нет"
// @Router /api/users/{id}/subscribe [delete]
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.unsubscribe"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	authorID, err := request.ID(r, "id")
	if err != nil {
		response.BadRequest(w, r, log, "invalid id", err)
		return
	}

	if err = h.service.Unsubscribe(r.Context(), middlewarectx.IdentityFrom(r.Context()), authorID); err != nil {
		response.Fail(w, r, log, err, "could not unsubscribe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
