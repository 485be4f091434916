// Package middlewarectx содержит HTTP middleware сервиса: разбор JWT
// в личность автора запроса, ограничение частоты запросов и метрики.
//
// IdentityMiddleware не требует токена: запрос без заголовка Authorization
// обрабатывается как анонимный. Неверный или просроченный токен даёт 401.
// RequireAuth закрывает маршрут от анонимных запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/foodgram/internal/http/response"
	"github.com/magabrotheeeer/foodgram/internal/lib/jwt"
	"github.com/magabrotheeeer/foodgram/internal/lib/sl"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey — ключ личности автора запроса в контексте.
const IdentityKey Key = "identity"

// TokenParser проверяет JWT и возвращает его claims.
type TokenParser interface {
	ParseToken(token string) (*jwt.CustomClaims, error)
}

// WithIdentity кладёт личность в контекст.
func WithIdentity(ctx context.Context, ident models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, ident)
}

// IdentityFrom возвращает личность из контекста или анонимную, если её нет.
func IdentityFrom(ctx context.Context) models.Identity {
	ident, ok := ctx.Value(IdentityKey).(models.Identity)
	if !ok {
		return models.Anonymous()
	}
	return ident
}

// IdentityMiddleware разбирает заголовок Authorization и кладёт личность в контекст.
func IdentityMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.IdentityMiddleware"

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), models.Anonymous())))
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenStr == "" {
				log.Info("invalid authorization header")
				response.JSON(w, r, http.StatusUnauthorized, response.Error("invalid authorization header"))
				return
			}

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				response.JSON(w, r, http.StatusUnauthorized, response.Error("invalid or expired token"))
				return
			}

			ident := models.Identity{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

// RequireAuth отклоняет анонимные запросы с 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFrom(r.Context()).IsAnonymous() {
			response.JSON(w, r, http.StatusUnauthorized, response.Error("authentication credentials were not provided"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
