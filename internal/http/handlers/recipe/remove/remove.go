// Package remove реализует HTTP-обработчик удаления рецепта.
// Удалять может автор или администратор.
package remove

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

// Service описывает интерфейс удаления рецепта.
type Service interface {
	Remove(ctx context.Context, ident models.Identity, id int64) error
}

// Handler обрабатывает DELETE /api/recipes/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipe.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.BadRequest(w, r, log, "invalid id", err)
		return
	}

	if err = h.service.Remove(r.Context(), middlewarectx.IdentityFrom(r.Context()), id); err != nil {
		response.Fail(w, r, log, err, "could not delete recipe")
		return
	}

	log.Info("recipe deleted", slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}
