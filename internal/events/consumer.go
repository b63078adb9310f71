package events

import (
	"context"
	"fmt"

	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rs/zerolog"
)

// EventStore persists extension events received from Pulsar.
type EventStore interface {
	RecordEvent(ctx context.Context, event models.ExtensionEvent) error
}

// receiver is the part of pulsar.Consumer the consume loop needs.
type receiver interface {
	Receive(ctx context.Context) (pulsar.Message, error)
	Ack(msg pulsar.Message) error
	Nack(msg pulsar.Message)
	Close()
}

// EventConsumer records the extension events of every Kasm services
// instance. Events of one session share a key so they arrive in order.
type EventConsumer struct {
	client   pulsar.Client
	consumer receiver
}

func NewEventConsumer(pulsarURL, topic, subscription string) (*EventConsumer, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{URL: pulsarURL})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	consumer, err := client.Subscribe(pulsar.ConsumerOptions{
		Topic:            topic,
		SubscriptionName: subscription,
		Type:             pulsar.KeyShared,
		DLQ: &pulsar.DLQPolicy{
			MaxDeliveries:   3,
			DeadLetterTopic: topic + "-dlq",
		},
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar consumer: %w", err)
	}

	return &EventConsumer{client: client, consumer: consumer}, nil
}

// Run records every received event in store until ctx is done. Events the
// store rejects are redelivered; undecodable payloads are dropped.
func (c *EventConsumer) Run(ctx context.Context, store EventStore) error {
	logger := zerolog.Ctx(ctx)

	for {
		msg, err := c.consumer.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error().Err(err).Msg("Error receiving message")
			continue
		}

		c.handle(ctx, msg, store)
	}
}

func (c *EventConsumer) handle(ctx context.Context, msg pulsar.Message, store EventStore) {
	logger := zerolog.Ctx(ctx).With().Str("key", msg.Key()).Logger()

	ok, err := Process(ctx, msg.Payload(), store)
	switch {
	case !ok:
		logger.Error().Err(err).Msg("Dropping malformed extension event")
	case err != nil:
		logger.Error().Err(err).Msg("Failed to record extension event")
		c.consumer.Nack(msg)
		return
	default:
		logger.Debug().Msg("Extension event recorded")
	}

	if err := c.consumer.Ack(msg); err != nil {
		logger.Error().Err(err).Msg("Failed to acknowledge message")
	}
}

// Close cleans up the Pulsar consumer and client.
func (c *EventConsumer) Close() {
	c.consumer.Close()
	if c.client != nil {
		c.client.Close()
	}
}

// Process decodes a payload and records it in the store. A payload that
// cannot be decoded is reported with ok=false so the caller can drop it
// instead of redelivering it.
func Process(ctx context.Context, payload []byte, store EventStore) (ok bool, err error) {
	event, err := Decode(payload)
	if err != nil {
		return false, err
	}
	if err := store.RecordEvent(ctx, event); err != nil {
		return true, fmt.Errorf("failed to record event %s: %w", event.ID, err)
	}
	return true, nil
}
