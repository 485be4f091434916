package rabbitmq

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/streadway/amqp"
)

// Publisher — часть канала AMQP, через которую отправляются сообщения.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublishJSON публикует сообщение в JSON с постоянной доставкой.
func PublishJSON(ch Publisher, exchange, routingKey string, message any) error {
	const op = "rabbitmq.PublishJSON"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
