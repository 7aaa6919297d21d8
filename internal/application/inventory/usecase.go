package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
	"github.com/jhoicas/crochet-api/internal/metrics"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// UnitsAddedEvent payload de stock.units_added.
type UnitsAddedEvent struct {
	ProductID string `json:"product_id"`
	Added     int    `json:"added"`
	Available int    `json:"available"`
}

// StockUseCase casos de uso de inventario para administradores.
type StockUseCase struct {
	txRunner ports.TxRunner
	repos    repository.Repos
	cache    ports.ProductCache
	events   ports.EventPublisher
	metrics  *metrics.StoreMetrics
	log      *logger.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner ports.TxRunner,
	repos repository.Repos,
	cache ports.ProductCache,
	events ports.EventPublisher,
	m *metrics.StoreMetrics,
	log *logger.Logger,
) *StockUseCase {
	return &StockUseCase{
		txRunner: txRunner,
		repos:    repos,
		cache:    cache,
		events:   events,
		metrics:  m,
		log:      log.Component("inventory"),
	}
}

// UpdateStock agrega Quantity unidades nuevas al producto. Bloquea la fila del producto
// para no competir con reservas de carrito en curso.
func (uc *StockUseCase) UpdateStock(ctx context.Context, in dto.UpdateStockRequest) (*dto.StockSummaryResponse, error) {
	if in.ProductID == "" || in.Quantity < 1 {
		return nil, domain.ErrInvalidInput
	}

	var summary *dto.StockSummaryResponse
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Products.LockByID(ctx, in.ProductID); err != nil {
			return err
		}
		ledger := NewStockLedger(r)
		if _, err := ledger.AddUnits(ctx, in.ProductID, in.Quantity); err != nil {
			return err
		}
		var err error
		summary, err = summarize(ctx, r, in.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordStockUnitsAdded(in.Quantity)
	if err := uc.cache.Invalidate(ctx, in.ProductID); err != nil {
		uc.log.Warn().Err(err).Str("product_id", in.ProductID).Msg("no se pudo invalidar cache de producto")
	}
	uc.publish(ctx, ports.Event{
		Type:       ports.EventStockUnitsAdded,
		Key:        in.ProductID,
		Payload:    UnitsAddedEvent{ProductID: in.ProductID, Added: in.Quantity, Available: summary.Available},
		OccurredAt: time.Now(),
	})
	uc.log.Info().Str("product_id", in.ProductID).Int("added", in.Quantity).Int("available", summary.Available).Msg("stock actualizado")
	return summary, nil
}

// ListItems lista unidades filtradas por producto y/o estado de venta.
func (uc *StockUseCase) ListItems(ctx context.Context, in dto.StockItemsRequest) ([]dto.StockUnitResponse, error) {
	filter := repository.StockFilter{Sold: in.Sold}
	if in.ProductID != "" {
		filter.ProductID = &in.ProductID
	}
	units, err := NewStockLedger(uc.repos).List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockUnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, dto.FromStockUnit(u))
	}
	return out, nil
}

// Summary conteo de unidades disponibles, vendidas y retenidas por carritos.
func (uc *StockUseCase) Summary(ctx context.Context, productID string) (*dto.StockSummaryResponse, error) {
	if _, err := uc.repos.Products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return summarize(ctx, uc.repos, productID)
}

func summarize(ctx context.Context, r repository.Repos, productID string) (*dto.StockSummaryResponse, error) {
	ledger := NewStockLedger(r)
	available, err := ledger.CountAvailable(ctx, productID)
	if err != nil {
		return nil, err
	}
	sold, err := ledger.CountSold(ctx, productID)
	if err != nil {
		return nil, err
	}
	held, err := r.CartItems.SumOpenQuantityByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.StockSummaryResponse{ProductID: productID, Available: available, Sold: sold, Held: held}, nil
}

func (uc *StockUseCase) publish(ctx context.Context, events ...ports.Event) {
	if err := uc.events.Publish(ctx, events...); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo publicar evento")
	}
}
