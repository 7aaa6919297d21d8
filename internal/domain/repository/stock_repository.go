package repository

import (
	"context"

	"github.com/jhoicas/crochet-api/internal/domain/entity"
)

// StockFilter filtros opcionales para listar unidades.
type StockFilter struct {
	ProductID *string
	Sold      *bool
}

// StockUnitRepository define el puerto para las unidades de inventario.
// Usado dentro de transacciones para garantizar consistencia.
type StockUnitRepository interface {
	CreateBatch(ctx context.Context, units []entity.StockUnit) error
	CountAvailable(ctx context.Context, productID string) (int, error)
	CountSold(ctx context.Context, productID string) (int, error)
	List(ctx context.Context, filter StockFilter) ([]entity.StockUnit, error)
	// PickAvailable devuelve hasta n unidades sin vender (las más antiguas primero).
	PickAvailable(ctx context.Context, productID string, n int) ([]entity.StockUnit, error)
	// MarkSold asocia la orden a cada unidad. Falla con ErrNotFound si alguna ya estaba vendida.
	MarkSold(ctx context.Context, unitIDs []string, orderID string) error
}
