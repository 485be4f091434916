// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Handler принимает JSON с email, username, именем, фамилией и паролем,
// передаёт их сервису и возвращает профиль созданного пользователя.
// Маршрут дополнительно ограничен по частоте запросов с одного IP.
package register

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodgram/internal/http/response"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// Service описывает интерфейс регистрации.
type Service interface {
	Register(ctx context.Context, in models.RegisterInput) (models.UserView, error)
}

// Handler обрабатывает POST /api/users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.RegisterInput true "Данные пользователя"
// @Success 201 {object} models.UserView
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Username или email заняты"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /api/users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var in models.RegisterInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		response.BadRequest(w, r, log, "invalid request body", err)
		return
	}

	user, err := h.service.Register(r.Context(), in)
	if err != nil {
		response.Fail(w, r, log, err, "could not register user")
		return
	}

	log.Info("user registered", slog.Int64("id", user.ID))
	response.JSON(w, r, http.StatusCreated, user)
}
