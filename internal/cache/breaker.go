package cache

import (
	"context"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// Breaker пропускает обращения к кешу через предохранитель: после серии
// ошибок обращения временно отклоняются с gobreaker.ErrOpenState.
type Breaker struct {
	inner Cache
	cb    *gobreaker.CircuitBreaker[bool]
}

// BreakerSettings — параметры срабатывания предохранителя.
type BreakerSettings struct {
	FailureThreshold uint32
	Timeout          time.Duration
}

// NewBreaker оборачивает кеш с настройками по умолчанию.
func NewBreaker(inner Cache, log *slog.Logger) *Breaker {
	return NewBreakerWithSettings(inner, log, BreakerSettings{FailureThreshold: 5, Timeout: 30 * time.Second})
}

// NewBreakerWithSettings оборачивает кеш с заданными настройками.
func NewBreakerWithSettings(inner Cache, log *slog.Logger, s BreakerSettings) *Breaker {
	settings := gobreaker.Settings{
		Name:        "cache",
		MaxRequests: 1,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	return &Breaker{inner: inner, cb: gobreaker.NewCircuitBreaker[bool](settings)}
}

// Get читает значение через предохранитель.
func (b *Breaker) Get(ctx context.Context, key string, result any) (bool, error) {
	return b.cb.Execute(func() (bool, error) {
		return b.inner.Get(ctx, key, result)
	})
}

// Set записывает значение через предохранитель.
func (b *Breaker) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	_, err := b.cb.Execute(func() (bool, error) {
		return true, b.inner.Set(ctx, key, value, expiration)
	})
	return err
}

// Invalidate удаляет ключ через предохранитель.
func (b *Breaker) Invalidate(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (bool, error) {
		return true, b.inner.Invalidate(ctx, key)
	})
	return err
}

// State возвращает состояние предохранителя.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
