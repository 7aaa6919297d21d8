package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/inventory"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
	"github.com/jhoicas/crochet-api/internal/infrastructure/memory"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

type capturePublisher struct{ events []ports.Event }

func (p *capturePublisher) Publish(_ context.Context, events ...ports.Event) error {
	p.events = append(p.events, events...)
	return nil
}

func newStock(t *testing.T) (*inventory.StockUseCase, repository.Repos, *capturePublisher) {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	events := &capturePublisher{}
	require.NoError(t, repos.Products.Create(context.Background(), &entity.Product{ID: "p1", Name: "Gorro", CreatedAt: time.Now()}))
	uc := inventory.NewStockUseCase(store.TxRunner(), repos, ports.NopProductCache{}, events, nil, logger.Nop())
	return uc, repos, events
}

func TestUpdateStock_AgregaUnidades(t *testing.T) {
	uc, _, events := newStock(t)
	ctx := context.Background()

	summary, err := uc.UpdateStock(ctx, dto.UpdateStockRequest{ProductID: "p1", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Available)
	assert.Zero(t, summary.Sold)

	summary, err = uc.UpdateStock(ctx, dto.UpdateStockRequest{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Available)

	require.Len(t, events.events, 2)
	payload := events.events[1].Payload.(inventory.UnitsAddedEvent)
	assert.Equal(t, 2, payload.Added)
	assert.Equal(t, 5, payload.Available)
	assert.Equal(t, ports.EventStockUnitsAdded, events.events[1].Type)
}

func TestUpdateStock_Errores(t *testing.T) {
	uc, _, events := newStock(t)
	ctx := context.Background()

	_, err := uc.UpdateStock(ctx, dto.UpdateStockRequest{ProductID: "p1", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UpdateStock(ctx, dto.UpdateStockRequest{ProductID: "p404", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, events.events)
}

func TestListItems_FiltraPorEstado(t *testing.T) {
	uc, repos, _ := newStock(t)
	ctx := context.Background()
	_, err := uc.UpdateStock(ctx, dto.UpdateStockRequest{ProductID: "p1", Quantity: 3})
	require.NoError(t, err)

	units, err := repos.Stock.PickAvailable(ctx, "p1", 1)
	require.NoError(t, err)
	require.NoError(t, inventory.NewStockLedger(repos).MarkSold(ctx, units, "orden-1"))

	all, err := uc.ListItems(ctx, dto.StockItemsRequest{ProductID: "p1"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sold := true
	onlySold, err := uc.ListItems(ctx, dto.StockItemsRequest{ProductID: "p1", Sold: &sold})
	require.NoError(t, err)
	require.Len(t, onlySold, 1)
	assert.Equal(t, units[0].ID, onlySold[0].ID)

	summary, err := uc.Summary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Available)
	assert.Equal(t, 1, summary.Sold)
}

func TestMarkSold_UnidadYaVendida(t *testing.T) {
	_, repos, _ := newStock(t)
	ctx := context.Background()
	units, err := inventory.NewStockLedger(repos).AddUnits(ctx, "p1", 2)
	require.NoError(t, err)

	ledger := inventory.NewStockLedger(repos)
	require.NoError(t, ledger.MarkSold(ctx, units[:1], "orden-1"))
	assert.ErrorIs(t, ledger.MarkSold(ctx, units, "orden-2"), domain.ErrNotFound)

	sold, err := ledger.CountSold(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, sold, "el segundo MarkSold no aplica nada")
}

func TestReserveOrFail_DescuentaRetenidoPorCarritos(t *testing.T) {
	_, repos, _ := newStock(t)
	ctx := context.Background()
	ledger := inventory.NewStockLedger(repos)
	_, err := ledger.AddUnits(ctx, "p1", 3)
	require.NoError(t, err)

	require.NoError(t, repos.Carts.Create(ctx, &entity.Cart{ID: "c1", UserID: "u1"}))
	require.NoError(t, repos.CartItems.Create(ctx, &entity.CartItem{ID: "i1", CartID: "c1", ProductID: "p1", Quantity: 2}))

	assert.NoError(t, ledger.ReserveOrFail(ctx, "p1", 1, 0))
	assert.ErrorIs(t, ledger.ReserveOrFail(ctx, "p1", 2, 0), domain.ErrInsufficientStock)
	assert.NoError(t, ledger.ReserveOrFail(ctx, "p1", 3, 2), "la línea propia puede crecer hasta el total")
}
