package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/foodgram/internal/lib/sl"
)

// Consume читает очередь до отмены ctx и передаёт тела сообщений в handler.
// Успешно обработанные сообщения подтверждаются, при ошибке возвращаются в очередь.
// Одновременно обрабатывается не больше workers сообщений. Consume возвращается
// только после завершения запущенных обработчиков.
func Consume(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string,
	workers int, handler func([]byte) error) error {
	const op = "rabbitmq.Consume"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	dispatch(ctx, log, delivery, workers, handler)
	return nil
}

// dispatch раздаёт сообщения не более чем workers обработчикам и возвращается
// после отмены ctx или закрытия канала, дождавшись уже запущенных обработчиков.
// Сообщение, для которого не нашлось свободного обработчика до отмены,
// возвращается в очередь.
func dispatch(ctx context.Context, log *slog.Logger, deliveries <-chan amqp.Delivery,
	workers int, handler func([]byte) error) {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	sem := make(chan struct{}, workers)
	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				if err := d.Nack(false, true); err != nil {
					log.Error("failed to nack message", sl.Err(err))
				}
				return
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				handle(log, d, handler)
			}(d)
		case <-ctx.Done():
			return
		}
	}
}

func handle(log *slog.Logger, d amqp.Delivery, handler func([]byte) error) {
	if err := handler(d.Body); err != nil {
		log.Warn("message handling failed", sl.Err(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
