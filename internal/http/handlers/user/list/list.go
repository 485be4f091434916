// Package list реализует HTTP-обработчик списка пользователей.
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

// Service описывает интерфейс чтения пользователей.
type Service interface {
	List(ctx context.Context, ident models.Identity, limit, offset int) ([]models.UserView, error)
}

// Handler обрабатывает GET /api/users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset, err := request.Page(r)
	if err != nil {
		response.BadRequest(w, r, log, "invalid pagination parameters", err)
		return
	}

	users, err := h.service.List(r.Context(), middlewarectx.IdentityFrom(r.Context()), limit, offset)
	if err != nil {
		response.Fail(w, r, log, err, "could not list users")
		return
	}
	response.JSON(w, r, http.StatusOK, users)
}
