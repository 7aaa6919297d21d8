package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	domaininv "github.com/jhoicas/crochet-api/internal/domain/inventory"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

// StockLedger opera sobre las unidades de inventario de un producto.
// Se construye con repositorios atados a una transacción (o al pool para lecturas sueltas);
// para que ReserveOrFail sea seguro frente a concurrencia el caller debe haber bloqueado
// la fila del producto (ProductRepository.LockByID) en la misma transacción.
type StockLedger struct {
	products  repository.ProductRepository
	units     repository.StockUnitRepository
	cartItems repository.CartItemRepository
	now       func() time.Time
}

// NewStockLedger construye el ledger sobre los repositorios dados.
func NewStockLedger(repos repository.Repos) *StockLedger {
	return &StockLedger{
		products:  repos.Products,
		units:     repos.Stock,
		cartItems: repos.CartItems,
		now:       time.Now,
	}
}

// AddUnits crea count unidades sin vender. El producto debe existir.
func (l *StockLedger) AddUnits(ctx context.Context, productID string, count int) ([]entity.StockUnit, error) {
	if count < 1 {
		return nil, domain.ErrInvalidInput
	}
	if _, err := l.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	now := l.now()
	units := make([]entity.StockUnit, count)
	for i := range units {
		units[i] = entity.StockUnit{ID: uuid.New().String(), ProductID: productID, CreatedAt: now}
	}
	if err := l.units.CreateBatch(ctx, units); err != nil {
		return nil, fmt.Errorf("crear unidades: %w", err)
	}
	return units, nil
}

// CountAvailable unidades sin orden asociada.
func (l *StockLedger) CountAvailable(ctx context.Context, productID string) (int, error) {
	return l.units.CountAvailable(ctx, productID)
}

// CountSold unidades ya consumidas por una orden.
func (l *StockLedger) CountSold(ctx context.Context, productID string) (int, error) {
	return l.units.CountSold(ctx, productID)
}

// ReserveOrFail verifica que requested unidades puedan quedar retenidas por una línea de carrito
// que ya retiene alreadyHeld. Lo retenido por otras líneas abiertas no está libre.
func (l *StockLedger) ReserveOrFail(ctx context.Context, productID string, requested, alreadyHeld int) error {
	available, err := l.units.CountAvailable(ctx, productID)
	if err != nil {
		return err
	}
	held, err := l.cartItems.SumOpenQuantityByProduct(ctx, productID)
	if err != nil {
		return err
	}
	return domaininv.CheckReservation(available, held, requested, alreadyHeld)
}

// MarkSold asocia la orden a las unidades. Solo se llama en el checkout.
func (l *StockLedger) MarkSold(ctx context.Context, units []entity.StockUnit, orderID string) error {
	if len(units) == 0 {
		return nil
	}
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return l.units.MarkSold(ctx, ids, orderID)
}

// List unidades filtradas por producto y/o estado de venta.
func (l *StockLedger) List(ctx context.Context, filter repository.StockFilter) ([]entity.StockUnit, error) {
	return l.units.List(ctx, filter)
}
