// Package pricing implementa el libro de precios de un producto (servicio de dominio puro).
//
// El historial es append-only: fijar un precio nuevo expira el vigente (Until = now)
// y agrega una entrada nueva con Until == nil. Las entradas nunca se borran.
package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
)

// MinimumPrice es el menor monto aceptado (0.01). El cero no es un precio válido.
var MinimumPrice = decimal.New(1, -2)

// MaximumPrice es el mayor monto que cabe en la columna NUMERIC(12,2).
var MaximumPrice = decimal.RequireFromString("9999999999.99")

// Change describe lo que SetPrice modificó, para que la capa de persistencia lo replique.
type Change struct {
	Expired []entity.ProductPrice
	Added   entity.ProductPrice
}

// Ledger aplica las reglas del libro de precios sobre un Product cargado en memoria.
type Ledger struct {
	now func() time.Time
}

// NewLedger construye el libro con el reloj indicado (nil = time.Now).
func NewLedger(now func() time.Time) Ledger {
	if now == nil {
		now = time.Now
	}
	return Ledger{now: now}
}

// ValidateAmount falla con ErrInvalidAmount si amount está fuera de [0.01, MaximumPrice]
// o tiene más de dos decimales.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThan(MinimumPrice) || amount.GreaterThan(MaximumPrice) {
		return domain.ErrInvalidAmount
	}
	// 10.50 y 10.5 son válidos; 10.005 no
	if !amount.Equal(amount.Truncate(2)) {
		return domain.ErrInvalidAmount
	}
	return nil
}

// SetPrice fija un precio nuevo. amount nil no hace nada (devuelve nil, nil).
// No es idempotente: el mismo monto dos veces genera dos entradas.
func (l Ledger) SetPrice(p *entity.Product, amount *decimal.Decimal) (*Change, error) {
	if amount == nil {
		return nil, nil
	}
	if err := ValidateAmount(*amount); err != nil {
		return nil, err
	}
	now := l.now()
	change := &Change{}
	for i := range p.Prices {
		if p.Prices[i].Until == nil {
			until := now
			p.Prices[i].Until = &until
			change.Expired = append(change.Expired, p.Prices[i])
		}
	}
	added := entity.ProductPrice{
		ID:        uuid.New().String(),
		ProductID: p.ID,
		Amount:    *amount,
		AsOf:      now,
	}
	// el vigente siempre queda al final del slice
	p.Prices = append(p.Prices, added)
	change.Added = added
	return change, nil
}

// EffectivePrice devuelve el precio vigente del producto.
// Los repositorios cargan el historial con el vigente al final, así que basta mirar la última entrada.
func EffectivePrice(p *entity.Product) (entity.ProductPrice, bool) {
	if p == nil || len(p.Prices) == 0 {
		return entity.ProductPrice{}, false
	}
	last := p.Prices[len(p.Prices)-1]
	if last.Until != nil {
		return entity.ProductPrice{}, false
	}
	return last, true
}

// ValidateListable falla con ErrNotListable si el producto está publicado sin precio vigente.
// Debe llamarse después de cada alta o actualización y antes de persistir.
func ValidateListable(p *entity.Product) error {
	if !p.ListedForSale {
		return nil
	}
	if _, ok := EffectivePrice(p); !ok {
		return domain.ErrNotListable
	}
	return nil
}
