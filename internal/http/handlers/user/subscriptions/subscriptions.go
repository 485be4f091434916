// Package subscriptions реализует HTTP-обработчик ленты подписок:
// авторы, на которых подписан пользователь, вместе с их рецептами.
package subscriptions

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

// Service описывает интерфейс чтения подписок.
type Service interface {
	Subscriptions(ctx context.Context, ident models.Identity, limit, offset, recipesLimit int) ([]models.AuthorView, error)
}

// Handler обрабатывает GET /api/users/subscriptions.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Мои подписки
// @Tags Users
// @Produce json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Param recipes_limit query int false "Сколько рецептов автора вернуть"
// @Success 200 {array} models.AuthorView
// @Failure 401 {object} response.ErrorResponse
// @Router /api/users/subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.subscriptions"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset, err := request.Page(r)
	if err != nil {
		response.BadRequest(w, r, log, "invalid pagination parameters", err)
		return
	}
	recipesLimit, err := request.Int(r, "recipes_limit")
	if err != nil {
		response.BadRequest(w, r, log, "invalid recipes_limit", err)
		return
	}

	authors, err := h.service.Subscriptions(r.Context(), middlewarectx.IdentityFrom(r.Context()), limit, offset, recipesLimit)
	if err != nil {
		response.Fail(w, r, log, err, "could not list subscriptions")
		return
	}
	response.JSON(w, r, http.StatusOK, authors)
}
