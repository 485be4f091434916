// Package download реализует выгрузку списка покупок текстовым файлом.
package download

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/foodgram/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodgram/internal/http/response"
	"github.com/magabrotheeeer/foodgram/internal/lib/sl"
	"github.com/magabrotheeeer/foodgram/internal/models"
	"github.com/magabrotheeeer/foodgram/internal/services/shopping"
)

// Service описывает интерфейс формирования списка покупок.
type Service interface {
	Document(ctx context.Context, ident models.Identity) ([]byte, error)
}

// Handler обрабатывает GET /api/recipes/download_shopping_cart.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Скачать список покупок
// @Tags Recipes
// @Produce plain
// @Success 200 {string} string "• {name} ({unit}) — {amount}"
// @Failure 401 {object} response.ErrorResponse
// @Router /api/recipes/download_shopping_cart [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipe.download"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	doc, err := h.service.Document(r.Context(), middlewarectx.IdentityFrom(r.Context()))
	if err != nil {
		response.Fail(w, r, log, err, "could not build shopping list")
		return
	}

	w.Header().Set("Content-Type", shopping.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+shopping.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(doc); err != nil {
		log.Error("failed to write shopping list", sl.Err(err))
	}
}
