package repository

import (
	"context"
	"time"

	"github.com/jhoicas/crochet-api/internal/domain/entity"
)

// PriceRepository persiste el libro de precios. Las entradas nunca se borran.
type PriceRepository interface {
	Create(ctx context.Context, price *entity.ProductPrice) error
	// Expire fija until en una entrada vigente.
	Expire(ctx context.Context, id string, until time.Time) error
	// ListByProduct devuelve el historial con el precio vigente al final.
	ListByProduct(ctx context.Context, productID string) ([]entity.ProductPrice, error)
	GetEffective(ctx context.Context, productID string) (entity.ProductPrice, bool, error)
	// GetEffectiveByProducts devuelve el precio vigente indexado por producto (los productos sin precio no aparecen).
	GetEffectiveByProducts(ctx context.Context, productIDs []string) (map[string]entity.ProductPrice, error)
}
