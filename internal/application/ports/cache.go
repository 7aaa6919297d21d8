package ports

import (
	"context"

	"github.com/jhoicas/crochet-api/internal/application/dto"
)

// ProductCache guarda el detalle de producto ya armado (precio vigente, imágenes, stock).
// Un fallo del cache nunca debe romper la lectura: el caso de uso cae a la base de datos.
type ProductCache interface {
	Get(ctx context.Context, productID string) (*dto.ProductResponse, bool, error)
	Set(ctx context.Context, product *dto.ProductResponse) error
	Invalidate(ctx context.Context, productIDs ...string) error
}

// NopProductCache no guarda nada.
type NopProductCache struct{}

func (NopProductCache) Get(context.Context, string) (*dto.ProductResponse, bool, error) {
	return nil, false, nil
}
func (NopProductCache) Set(context.Context, *dto.ProductResponse) error { return nil }
func (NopProductCache) Invalidate(context.Context, ...string) error    { return nil }
