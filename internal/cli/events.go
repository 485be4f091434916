package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/foodgram/internal/models"
	"github.com/magabrotheeeer/foodgram/internal/rabbitmq"
)

// NewEventsCommand создаёт команду чтения событий о рецептах из брокера.
func NewEventsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect recipe events in the message broker",
	}

	var workers int
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print recipe.published events until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.RabbitMQ.URL == "" {
				return errors.New("rabbitmq url is not configured")
			}
			log := opts.logger()

			conn, err := rabbitmq.Connect(cmd.Context(), cfg.RabbitMQ.URL, 5, 2*time.Second)
			if err != nil {
				return err
			}
			defer conn.Close()

			queues := rabbitmq.RecipeQueues(cfg.RabbitMQ.RoutingKey)
			ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, queues)
			if err != nil {
				return err
			}
			defer ch.Close()

			log.Info("waiting for events", slog.String("queue", queues[0].QueueName))
			return rabbitmq.Consume(cmd.Context(), log, ch, queues[0].QueueName, workers,
				PrintEvent(cmd.OutOrStdout()))
		},
	}
	tail.Flags().IntVar(&workers, "workers", 1, "number of concurrent handlers")
	cmd.AddCommand(tail)

	return cmd
}

// PrintEvent возвращает обработчик, который печатает событие одной строкой.
// Тело, которое не удалось разобрать, печатается как есть и подтверждается.
func PrintEvent(w io.Writer) func([]byte) error {
	return func(body []byte) error {
		var ev models.RecipePublishedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			_, werr := fmt.Fprintf(w, "undecodable event: %s\n", body)
			return werr
		}
		_, err := fmt.Fprintf(w, "recipe %d %q by %s (id %d)\n", ev.RecipeID, ev.Name, ev.Author, ev.AuthorID)
		return err
	}
}
