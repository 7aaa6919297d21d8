package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo.
// Prices es el historial completo (libro de precios); Images viene ordenado por prioridad.
// No guarda referencias a stock ni a carritos: se consultan por ProductID.
type Product struct {
	ID            string
	Name          string
	Description   string
	ListedForSale bool
	Prices        []ProductPrice
	Images        []Image
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductPrice es una entrada del libro de precios de un producto.
// Until == nil indica el precio vigente; como máximo una entrada por producto puede tenerlo.
type ProductPrice struct {
	ID        string
	ProductID string
	Amount    decimal.Decimal
	AsOf      time.Time
	Until     *time.Time
}

// IsEffective indica si el precio sigue vigente.
func (p ProductPrice) IsEffective() bool {
	return p.Until == nil
}
