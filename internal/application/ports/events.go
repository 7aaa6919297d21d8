package ports

import (
	"context"
	"time"
)

// Tipos de evento de dominio publicados por los casos de uso.
const (
	EventOrderPlaced         = "order.placed"
	EventStockUnitsAdded     = "stock.units_added"
	EventProductPriceChanged = "product.price_changed"
)

// Event evento de dominio. Key agrupa los eventos de una misma entidad (partición).
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher publica eventos después del commit. Es best-effort: el caller solo registra el error.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NopEventPublisher descarta los eventos.
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, ...Event) error { return nil }
