package entity

import "time"

// StockUnit representa una unidad física de inventario (no un contador).
// Una unidad con OrderID distinto de nil está vendida y no vuelve al stock disponible.
type StockUnit struct {
	ID        string
	ProductID string
	OrderID   *string
	CreatedAt time.Time
}

// Sold indica si la unidad ya fue consumida por una orden.
func (u StockUnit) Sold() bool {
	return u.OrderID != nil
}
