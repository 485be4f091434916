// Package events публикует доменные события сервиса во внешний брокер.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/foodgram/internal/config"
	"github.com/magabrotheeeer/foodgram/internal/lib/sl"
	"github.com/magabrotheeeer/foodgram/internal/rabbitmq"
)

// Publisher отправляет событие с ключом маршрутизации.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// New возвращает RabbitMQ-публикатор или Noop, если URL брокера не задан.
// Первое подключение выполняется сразу с повторами, чтобы сервис не стартовал
// без брокера. Потерянное позже соединение восстанавливается при следующей публикации.
func New(ctx context.Context, cfg config.RabbitMQ, log *slog.Logger) (Publisher, func() error, error) {
	const op = "events.New"
	if cfg.URL == "" {
		log.Info("rabbitmq url is empty, events are disabled")
		return Noop{}, func() error { return nil }, nil
	}

	sess, err := dial(ctx, cfg, 5)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	p := newRabbitMQ(func(ctx context.Context) (*session, error) {
		return dial(ctx, cfg, 1)
	}, cfg.Exchange, log)
	p.sess = sess
	return p, p.Close, nil
}

// session — канал с соединением и сигналом их закрытия.
type session struct {
	ch     rabbitmq.Publisher
	closed <-chan *amqp.Error
	close  func() error
}

func (s *session) broken() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func dial(ctx context.Context, cfg config.RabbitMQ, retries int) (*session, error) {
	conn, err := rabbitmq.Connect(ctx, cfg.URL, retries, 2*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.RecipeQueues(cfg.RoutingKey))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &session{
		ch:     ch,
		closed: ch.NotifyClose(make(chan *amqp.Error, 1)),
		close: func() error {
			_ = ch.Close()
			return conn.Close()
		},
	}, nil
}

// RabbitMQ публикует события в обменник брокера.
type RabbitMQ struct {
	mu       sync.Mutex
	dial     func(ctx context.Context) (*session, error)
	sess     *session
	exchange string
	log      *slog.Logger
}

func newRabbitMQ(dial func(ctx context.Context) (*session, error), exchange string, log *slog.Logger) *RabbitMQ {
	return &RabbitMQ{dial: dial, exchange: exchange, log: log}
}

// Publish отправляет событие в формате JSON. Закрытый брокером канал
// заменяется новым подключением, неудачная отправка сбрасывает канал.
func (p *RabbitMQ) Publish(ctx context.Context, routingKey string, payload any) error {
	const op = "events.Publish"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sess != nil && p.sess.broken() {
		p.log.Warn("rabbitmq channel closed, reconnecting")
		p.drop()
	}
	if p.sess == nil {
		sess, err := p.dial(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		p.sess = sess
	}

	if err := rabbitmq.PublishJSON(p.sess.ch, p.exchange, routingKey, payload); err != nil {
		p.drop()
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает текущее соединение с брокером.
func (p *RabbitMQ) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess == nil {
		return nil
	}
	err := p.sess.close()
	p.sess = nil
	return err
}

func (p *RabbitMQ) drop() {
	if err := p.sess.close(); err != nil {
		p.log.Debug("failed to close rabbitmq session", sl.Err(err))
	}
	p.sess = nil
}

// Noop отбрасывает события.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, string, any) error { return nil }
