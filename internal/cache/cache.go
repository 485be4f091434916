// Package cache кеширует справочные данные. Значения хранятся в JSON,
// поэтому Get декодирует их в переданный указатель независимо от хранилища.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/foodgram/internal/config"
)

// Cache — общий интерфейс хранилищ кеша.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Хранилища кеша из конфигурации.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// New выбирает хранилище по cfg.Cache.Backend. Redis оборачивается
// предохранителем, чтобы недоступность сервера не замедляла запросы.
// Возвращаемая функция освобождает соединения хранилища.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (Cache, func() error, error) {
	const op = "cache.New"
	noClose := func() error { return nil }

	switch cfg.Cache.Backend {
	case BackendRedis:
		r, err := InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return NewBreaker(r, log), r.Close, nil
	case BackendMemory, "":
		m, err := NewMemory(cfg.Cache.Size)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return m, noClose, nil
	case BackendNone:
		return Noop{}, noClose, nil
	default:
		return nil, nil, fmt.Errorf("%s: unknown backend %q", op, cfg.Cache.Backend)
	}
}

// Noop ничего не хранит.
type Noop struct{}

// Get всегда сообщает о промахе.
func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }

// Set ничего не делает.
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }

// Invalidate ничего не делает.
func (Noop) Invalidate(context.Context, string) error { return nil }
