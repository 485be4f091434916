package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/foodgram/internal/config"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

func TestNew_EmptyURLDisablesEvents(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, closer, err := New(context.Background(), config.RabbitMQ{}, log)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, closer())

	err = p.Publish(context.Background(), "recipe.published", models.RecipePublishedEvent{RecipeID: 1})
	assert.NoError(t, err)
}

type fakeChannel struct {
	published []string
	err       error
}

func (c *fakeChannel) Publish(_, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, key+" "+string(msg.Body))
	return nil
}

// fakeBroker выдаёт новый канал на каждое подключение.
type fakeBroker struct {
	dials    int
	dialErr  error
	channels []*fakeChannel
	closes   []chan *amqp.Error
}

func (b *fakeBroker) dial(context.Context) (*session, error) {
	b.dials++
	if b.dialErr != nil {
		return nil, b.dialErr
	}
	ch := &fakeChannel{}
	closed := make(chan *amqp.Error, 1)
	b.channels = append(b.channels, ch)
	b.closes = append(b.closes, closed)
	return &session{ch: ch, closed: closed, close: func() error { return nil }}, nil
}

func TestRabbitMQ_Reconnects(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()
	event := models.RecipePublishedEvent{RecipeID: 1}

	t.Run("channel closed by broker", func(t *testing.T) {
		b := &fakeBroker{}
		p := newRabbitMQ(b.dial, "recipes", log)

		require.NoError(t, p.Publish(ctx, "recipe.published", event))
		close(b.closes[0])
		require.NoError(t, p.Publish(ctx, "recipe.published", event))

		assert.Equal(t, 2, b.dials)
		assert.Len(t, b.channels[0].published, 1)
		assert.Len(t, b.channels[1].published, 1)
	})

	t.Run("failed publish drops the channel", func(t *testing.T) {
		b := &fakeBroker{}
		p := newRabbitMQ(b.dial, "recipes", log)

		require.NoError(t, p.Publish(ctx, "recipe.published", event))
		b.channels[0].err = errors.New("channel/connection is not open")
		require.Error(t, p.Publish(ctx, "recipe.published", event))
		require.NoError(t, p.Publish(ctx, "recipe.published", event))

		assert.Equal(t, 2, b.dials)
		assert.Len(t, b.channels[1].published, 1)
	})

	t.Run("broker unavailable then back", func(t *testing.T) {
		b := &fakeBroker{dialErr: errors.New("connection refused")}
		p := newRabbitMQ(b.dial, "recipes", log)

		require.Error(t, p.Publish(ctx, "recipe.published", event))
		b.dialErr = nil
		require.NoError(t, p.Publish(ctx, "recipe.published", event))

		assert.Equal(t, 2, b.dials)
		assert.Equal(t, []string{`recipe.published {"recipe_id":1,"author_id":0,"author":"","name":""}`},
			b.channels[0].published)
		assert.NoError(t, p.Close())
	})
}
