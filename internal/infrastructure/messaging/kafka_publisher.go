// Package messaging publica los eventos del dominio en Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/crochet-api/internal/application/ports"
)

// HeaderEventType header con el tipo de evento (order.placed, ...).
const HeaderEventType = "event_type"

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// envelope valor JSON de cada mensaje.
type envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// KafkaPublisher escribe un mensaje por evento. Key = Event.Key, así los eventos de una
// misma orden o producto caen en la misma partición.
type KafkaPublisher struct {
	w       messageWriter
	timeout time.Duration
}

// NewKafkaPublisher construye el publisher sobre un kafka.Writer con balanceo por hash de key.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	})
}

func newKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w, timeout: 5 * time.Second}
}

// Publish escribe los eventos en un solo lote.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...ports.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		occurred := e.OccurredAt
		if occurred.IsZero() {
			occurred = time.Now()
		}
		value, err := json.Marshal(envelope{Type: e.Type, OccurredAt: occurred.UTC(), Payload: e.Payload})
		if err != nil {
			return fmt.Errorf("encode event %s: %w", e.Type, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(e.Key),
			Value:   value,
			Time:    occurred,
			Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(e.Type)}},
		})
	}

	// los eventos se publican después del commit: no deben colgar la request
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.w.WriteMessages(writeCtx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close vacía el buffer del writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
