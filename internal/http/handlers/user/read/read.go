// Package read реализует HTTP-обработчики профиля пользователя:
// по ID и собственного профиля автора запроса.
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

// Service описывает интерфейс чтения профилей.
type Service interface {
	Get(ctx context.Context, ident models.Identity, id int64) (models.UserView, error)
	Me(ctx context.Context, ident models.Identity) (models.UserView, error)
}

// Handler обрабатывает GET /api/users/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.BadRequest(w, r, log, "invalid id", err)
		return
	}

	user, err := h.service.Get(r.Context(), middlewarectx.IdentityFrom(r.Context()), id)
	if err != nil {
		response.Fail(w, r, log, err, "could not read user")
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

// MeHandler обрабатывает GET /api/users/me.
type MeHandler struct {
	log     *slog.Logger
	service Service
}

// NewMe создаёт MeHandler.
func NewMe(log *slog.Logger, service Service) *MeHandler {
	return &MeHandler{log: log, service: service}
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.me"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, err := h.service.Me(r.Context(), middlewarectx.IdentityFrom(r.Context()))
	if err != nil {
		response.Fail(w, r, log, err, "could not read profile")
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}
