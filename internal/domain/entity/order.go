package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order agrupa las unidades de stock consumidas en un checkout.
type Order struct {
	ID        string
	UserID    string
	Total     decimal.Decimal
	Lines     []OrderLine
	CreatedAt time.Time
}

// OrderLine congela nombre y precio del producto al momento del checkout.
type OrderLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}
