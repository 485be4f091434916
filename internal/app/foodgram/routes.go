package foodgram

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/foodgram/internal/config"
	"github.com/magabrotheeeer/foodgram/internal/http/handlers/health"
	ingredientlist "github.com/magabrotheeeer/foodgram/internal/http/handlers/ingredient/list"
	ingredientread "github.com/magabrotheeeer/foodgram/internal/http/handlers/ingredient/read"
	recipecreate "github.com/magabrotheeeer/foodgram/internal/http/handlers/recipe/create"
	"github.com/magabrotheeeer/foodgram/internal/http/handlers/recipe/download"
	recipelist "github.com/magabrotheeeer/foodgram/internal/http/handlers/recipe/list"
	reciperead "github.com/magabrotheeeer/foodgram/internal/http/handlers/recipe/read"
	reciperemove "github.com/magabrotheeeer/foodgram/internal/http/handlers/recipe/remove"
	"github.com/magabrotheeeer/foodgram/internal/http/handlers/recipe/toggle"
	recipeupdate "github.com/magabrotheeeer/foodgram/internal/http/handlers/recipe/update"
	taglist "github.com/magabrotheeeer/foodgram/internal/http/handlers/tag/list"
	tagread "github.com/magabrotheeeer/foodgram/internal/http/handlers/tag/read"
	userlist "github.com/magabrotheeeer/foodgram/internal/http/handlers/user/list"
	userread "github.com/magabrotheeeer/foodgram/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/foodgram/internal/http/handlers/user/register"
	"github.com/magabrotheeeer/foodgram/internal/http/handlers/user/subscribe"
	"github.com/magabrotheeeer/foodgram/internal/http/handlers/user/subscriptions"
	"github.com/magabrotheeeer/foodgram/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodgram/internal/imagestore"
	"github.com/magabrotheeeer/foodgram/internal/services/catalog"
	"github.com/magabrotheeeer/foodgram/internal/services/recipe"
	"github.com/magabrotheeeer/foodgram/internal/services/relation"
	"github.com/magabrotheeeer/foodgram/internal/services/shopping"
	"github.com/magabrotheeeer/foodgram/internal/services/user"
)

// Services набор сервисов, которые обслуживают HTTP API.
type Services struct {
	Catalog  *catalog.Service
	Recipes  *recipe.Service
	Relation *relation.Service
	Shopping *shopping.Service
	Users    *user.Service
	Tokens   middlewarectx.TokenParser
	DB       health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middlewarectx.MetricsMiddleware,
	)

	limiter := middlewarectx.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	favorite := toggle.NewAdd(logger, "favorite", s.Relation.AddFavorite)
	unfavorite := toggle.NewRemove(logger, "favorite", s.Relation.RemoveFavorite)
	toCart := toggle.NewAdd(logger, "shopping_cart", s.Relation.AddToCart)
	fromCart := toggle.NewRemove(logger, "shopping_cart", s.Relation.RemoveFromCart)
	follow := subscribe.New(logger, s.Relation)

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarectx.IdentityMiddleware(s.Tokens, logger))

		// Открытые конечные точки
		r.Get("/tags", taglist.New(logger, s.Catalog).ServeHTTP)
		r.Get("/tags/{id}", tagread.New(logger, s.Catalog).ServeHTTP)
		r.Get("/ingredients", ingredientlist.New(logger, s.Catalog).ServeHTTP)
		r.Get("/ingredients/{id}", ingredientread.New(logger, s.Catalog).ServeHTTP)
		r.Get("/recipes", recipelist.New(logger, s.Recipes).ServeHTTP)
		r.Get("/users", userlist.New(logger, s.Users).ServeHTTP)
		r.With(httprate.LimitByIP(cfg.RateLimit.RegisterPerMinute, time.Minute)).
			Post("/users", register.New(logger, s.Users).ServeHTTP)

		// Группа для аутентифицированных пользователей
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth)
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))

			r.Get("/users/me", userread.NewMe(logger, s.Users).ServeHTTP)
			r.Get("/users/subscriptions", subscriptions.New(logger, s.Users).ServeHTTP)
			r.Post("/users/{id}/subscribe", follow.Subscribe)
			r.Delete("/users/{id}/subscribe", follow.Unsubscribe)

			r.Get("/recipes/download_shopping_cart", download.New(logger, s.Shopping).ServeHTTP)
			r.Post("/recipes", recipecreate.New(logger, s.Recipes).ServeHTTP)
			r.Patch("/recipes/{id}", recipeupdate.New(logger, s.Recipes).ServeHTTP)
			r.Delete("/recipes/{id}", reciperemove.New(logger, s.Recipes).ServeHTTP)
			r.Post("/recipes/{id}/favorite", favorite.ServeHTTP)
			r.Delete("/recipes/{id}/favorite", unfavorite.ServeHTTP)
			r.Post("/recipes/{id}/shopping_cart", toCart.ServeHTTP)
			r.Delete("/recipes/{id}/shopping_cart", fromCart.ServeHTTP)
		})

		r.Get("/users/{id}", userread.New(logger, s.Users).ServeHTTP)
		r.Get("/recipes/{id}", reciperead.New(logger, s.Recipes).ServeHTTP)
	})

	r.Get("/health", health.New(logger, s.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)

	if cfg.Media.Backend == imagestore.BackendLocal || cfg.Media.Backend == "" {
		prefix := cfg.Media.URLPrefix
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Media.Root))))
	}
}
