// Package foodgram собирает HTTP-приложение сервиса рецептов.
package foodgram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/foodgram/internal/cache"
	"github.com/magabrotheeeer/foodgram/internal/config"
	"github.com/magabrotheeeer/foodgram/internal/events"
	"github.com/magabrotheeeer/foodgram/internal/imagestore"
	"github.com/magabrotheeeer/foodgram/internal/lib/jwt"
	"github.com/magabrotheeeer/foodgram/internal/lib/sl"
	"github.com/magabrotheeeer/foodgram/internal/migrations"
	"github.com/magabrotheeeer/foodgram/internal/services/catalog"
	"github.com/magabrotheeeer/foodgram/internal/services/recipe"
	"github.com/magabrotheeeer/foodgram/internal/services/relation"
	"github.com/magabrotheeeer/foodgram/internal/services/shopping"
	"github.com/magabrotheeeer/foodgram/internal/services/user"
	"github.com/magabrotheeeer/foodgram/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-сервер со всеми зависимостями.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *repository.Storage
	closers []func() error
}

// New подключается к базе, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.foodgram.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	closers := []func() error{db.Close}
	fail := func(err error) (*App, error) {
		closeAll(logger, closers)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return fail(err)
	}

	refCache, closeCache, err := cache.New(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeCache)

	images, err := imagestore.New(ctx, cfg.Media)
	if err != nil {
		return fail(err)
	}
	publisher, closeEvents, err := events.New(ctx, cfg.RabbitMQ, logger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeEvents)

	tokens := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, Services{
		Catalog:  catalog.New(db, refCache, logger, cfg.Cache.TTL),
		Recipes:  recipe.New(db, images, publisher, logger, cfg.RabbitMQ.RoutingKey),
		Relation: relation.New(db, logger),
		Shopping: shopping.New(db),
		Users:    user.New(db, tokens, logger),
		Tokens:   tokens,
		DB:       db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		logger:  logger,
		db:      db,
		closers: closers,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	closeAll(a.logger, a.closers)
}

// closeAll освобождает ресурсы в порядке, обратном созданию.
func closeAll(log *slog.Logger, closers []func() error) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			log.Warn("failed to release resource", sl.Err(err))
		}
	}
}
