package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rs/zerolog/log"
)

// Notifier publishes extension events.
type Notifier interface {
	Publish(ctx context.Context, event models.ExtensionEvent) error
	Close()
}

// sender is the part of a pulsar.Producer the publisher needs.
type sender interface {
	Send(ctx context.Context, msg *pulsar.ProducerMessage) (pulsar.MessageID, error)
	Close()
}

// EventPublisher sends extension events to a Pulsar topic, keyed by the
// session they belong to.
type EventPublisher struct {
	client   pulsar.Client
	producer sender
}

// NewEventPublisher initializes the Pulsar client and producer.
func NewEventPublisher(pulsarURL, topic string) (*EventPublisher, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL: pulsarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic: topic,
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar producer: %w", err)
	}

	log.Info().Str("topic", topic).Msg("Pulsar client and producer initialized successfully")
	return &EventPublisher{client: client, producer: producer}, nil
}

// Publish serializes the event and sends it to Pulsar.
func (p *EventPublisher) Publish(ctx context.Context, event models.ExtensionEvent) error {
	message, err := Encode(event)
	if err != nil {
		return err
	}

	_, err = p.producer.Send(ctx, &pulsar.ProducerMessage{
		Key:     event.KasmID,
		Payload: message,
		Properties: map[string]string{
			"status": string(event.Status),
		},
	})
	if err != nil {
		return fmt.Errorf("could not send event to Pulsar: %w", err)
	}

	log.Debug().Str("event_id", event.ID.String()).Str("status", string(event.Status)).Msg("Event sent to Pulsar")
	return nil
}

// Close closes the Pulsar producer and client.
func (p *EventPublisher) Close() {
	p.producer.Close()
	if p.client != nil {
		p.client.Close()
	}
	log.Info().Msg("Pulsar client and producer closed successfully")
}

// NopNotifier discards events. It is used when no Pulsar URL is configured.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, models.ExtensionEvent) error { return nil }

func (NopNotifier) Close() {}

// Encode serializes an extension event.
func Encode(event models.ExtensionEvent) ([]byte, error) {
	message, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("could not serialize event payload: %w", err)
	}
	return message, nil
}

// Decode parses an extension event from a message payload.
func Decode(payload []byte) (models.ExtensionEvent, error) {
	var event models.ExtensionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("could not parse event payload: %w", err)
	}
	if event.KasmID == "" || event.Status == "" {
		return event, fmt.Errorf("event payload is missing kasmId or status")
	}
	return event, nil
}
