package cart_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crochet-api/internal/application/cart"
	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
	"github.com/jhoicas/crochet-api/internal/infrastructure/memory"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

type fakeReceipts struct{}

func (fakeReceipts) GenerateReceipt(_ context.Context, order *entity.Order, _ *entity.User) ([]byte, error) {
	return []byte("%PDF-" + order.ID), nil
}

type fixture struct {
	store  *memory.Store
	repos  repository.Repos
	uc     *cart.UseCase
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	events := &recordingPublisher{}
	uc := cart.NewUseCase(store.TxRunner(), store.Repos(), ports.NopProductCache{}, events, fakeReceipts{}, nil, logger.Nop())
	return &fixture{store: store, repos: store.Repos(), uc: uc, events: events}
}

// newProduct crea un producto publicado con precio y units unidades sin vender.
func (f *fixture) newProduct(t *testing.T, price string, units int) string {
	t.Helper()
	ctx := context.Background()
	id := uuid.New().String()
	now := time.Now()
	require.NoError(t, f.repos.Products.Create(ctx, &entity.Product{ID: id, Name: "Gorro " + id[:4], ListedForSale: true, CreatedAt: now}))
	require.NoError(t, f.repos.Prices.Create(ctx, &entity.ProductPrice{
		ID: uuid.New().String(), ProductID: id, Amount: decimal.RequireFromString(price), AsOf: now,
	}))
	batch := make([]entity.StockUnit, units)
	for i := range batch {
		batch[i] = entity.StockUnit{ID: uuid.New().String(), ProductID: id, CreatedAt: now}
	}
	if units > 0 {
		require.NoError(t, f.repos.Stock.CreateBatch(ctx, batch))
	}
	return id
}

func (f *fixture) newUser(t *testing.T) string {
	t.Helper()
	id := uuid.New().String()
	require.NoError(t, f.repos.Users.Create(context.Background(), &entity.User{ID: id, Email: id + "@crochet.local", Role: entity.RoleUser}))
	require.NoError(t, f.repos.Carts.Create(context.Background(), &entity.Cart{ID: uuid.New().String(), UserID: id}))
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// AddItem
// ──────────────────────────────────────────────────────────────────────────────

func TestAddItem_AgregarMismoProductoSumaEnUnaLinea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	productID := f.newProduct(t, "25.00", 5)

	_, err := f.uc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: productID, Quantity: 2})
	require.NoError(t, err)
	item, err := f.uc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: productID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	items, err := f.uc.GetItems(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1, "debe existir una sola línea para el producto")
	assert.Equal(t, 3, items[0].Quantity)
	require.NotNil(t, items[0].Product.Price)
	assert.Equal(t, "25", items[0].Product.Price.String())
}

func TestAddItem_ReservaContraUnidadesDisponibles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	productID := f.newProduct(t, "10.00", 3)

	_, err := f.uc.AddItem(ctx, f.newUser(t), dto.AddCartItemRequest{ProductID: productID, Quantity: 4})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.uc.AddItem(ctx, f.newUser(t), dto.AddCartItemRequest{ProductID: productID, Quantity: 3})
	assert.NoError(t, err)
}

func TestAddItem_FoldQueExcedeNoModificaLinea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	productID := f.newProduct(t, "10.00", 3)

	_, err := f.uc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: productID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.uc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: productID, Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	items, _ := f.uc.GetItems(ctx, userID)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddItem_OtroCarritoRetieneStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.newProduct(t, "10.00", 3)

	_, err := f.uc.AddItem(ctx, f.newUser(t), dto.AddCartItemRequest{ProductID: productID, Quantity: 2})
	require.NoError(t, err)

	_, err = f.uc.AddItem(ctx, f.newUser(t), dto.AddCartItemRequest{ProductID: productID, Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestAddItem_ProductoNoPublicado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.New().String()
	require.NoError(t, f.repos.Products.Create(ctx, &entity.Product{ID: id, Name: "Borrador"}))

	_, err := f.uc.AddItem(ctx, f.newUser(t), dto.AddCartItemRequest{ProductID: id, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotListable)
}

func TestAddItem_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.newProduct(t, "10.00", 3)

	_, err := f.uc.AddItem(ctx, f.newUser(t), dto.AddCartItemRequest{ProductID: productID, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.AddItem(ctx, f.newUser(t), dto.AddCartItemRequest{ProductID: "no-existe", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddItem_CreaCarritoSiNoExiste(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.newProduct(t, "10.00", 1)

	_, err := f.uc.AddItem(ctx, "usuario-sin-carrito", dto.AddCartItemRequest{ProductID: productID, Quantity: 1})
	require.NoError(t, err)

	c, err := f.repos.Carts.GetByUserID(ctx, "usuario-sin-carrito")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateQuantity / DeleteItem
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateQuantity_ExcedeStockDejaCantidadPrevia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	productID := f.newProduct(t, "10.00", 3)

	item, err := f.uc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: productID, Quantity: 2})
	require.NoError(t, err)

	_, err = f.uc.UpdateQuantity(ctx, userID, item.ID, 4)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	stored, err := f.repos.CartItems.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)

	// la propia retención cuenta: 3 = disponibles
	updated, err := f.uc.UpdateQuantity(ctx, userID, item.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
}

func TestUpdateQuantity_LineaDeOtroUsuario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)
	productID := f.newProduct(t, "10.00", 3)
	item, err := f.uc.AddItem(ctx, owner, dto.AddCartItemRequest{ProductID: productID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.uc.UpdateQuantity(ctx, f.newUser(t), item.ID, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.uc.DeleteItem(ctx, f.newUser(t), item.ID), domain.ErrNotFound)
}

func TestDeleteItem_LiberaRetencion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.newProduct(t, "10.00", 2)
	first := f.newUser(t)

	item, err := f.uc.AddItem(ctx, first, dto.AddCartItemRequest{ProductID: productID, Quantity: 2})
	require.NoError(t, err)
	require.NoError(t, f.uc.DeleteItem(ctx, first, item.ID))

	_, err = f.uc.AddItem(ctx, f.newUser(t), dto.AddCartItemRequest{ProductID: productID, Quantity: 2})
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Checkout
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_CreaOrdenYMarcaUnidadesVendidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	gorro := f.newProduct(t, "25.50", 3)
	bufanda := f.newProduct(t, "40.00", 1)

	_, err := f.uc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: gorro, Quantity: 2})
	require.NoError(t, err)
	_, err = f.uc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: bufanda, Quantity: 1})
	require.NoError(t, err)

	order, err := f.uc.Checkout(ctx, userID)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("91.00")), "total = 2*25.50 + 40.00, got %s", order.Total)
	assert.Len(t, order.Lines, 2)

	avail, _ := f.repos.Stock.CountAvailable(ctx, gorro)
	sold, _ := f.repos.Stock.CountSold(ctx, gorro)
	assert.Equal(t, 1, avail)
	assert.Equal(t, 2, sold)

	items, err := f.uc.GetItems(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items, "las líneas salen del carrito tras el checkout")

	orders, err := f.uc.ListOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, ports.EventOrderPlaced, f.events.events[0].Type)
}

func TestCheckout_VentaReduceDisponibles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.newProduct(t, "10.00", 3)
	buyer := f.newUser(t)

	_, err := f.uc.AddItem(ctx, buyer, dto.AddCartItemRequest{ProductID: productID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.uc.Checkout(ctx, buyer)
	require.NoError(t, err)

	_, err = f.uc.AddItem(ctx, f.newUser(t), dto.AddCartItemRequest{ProductID: productID, Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "tras vender una unidad solo quedan 2")
}

func TestCheckout_CarritoVacio(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Checkout(context.Background(), f.newUser(t))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckout_ProductoDespublicadoHaceRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	ok := f.newProduct(t, "10.00", 2)
	retired := f.newProduct(t, "12.00", 2)

	_, err := f.uc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: ok, Quantity: 1})
	require.NoError(t, err)
	_, err = f.uc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: retired, Quantity: 1})
	require.NoError(t, err)

	p, err := f.repos.Products.GetByID(ctx, retired)
	require.NoError(t, err)
	p.ListedForSale = false
	require.NoError(t, f.repos.Products.Update(ctx, p))

	_, err = f.uc.Checkout(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrNotListable)

	sold, _ := f.repos.Stock.CountSold(ctx, ok)
	assert.Zero(t, sold, "ninguna unidad queda vendida si el checkout falla")
	items, _ := f.uc.GetItems(ctx, userID)
	assert.Len(t, items, 2)
}

func TestReceipt_SoloDelDueno(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	productID := f.newProduct(t, "10.00", 1)
	_, err := f.uc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: productID, Quantity: 1})
	require.NoError(t, err)
	order, err := f.uc.Checkout(ctx, userID)
	require.NoError(t, err)

	pdf, err := f.uc.Receipt(ctx, userID, order.ID)
	require.NoError(t, err)
	assert.Contains(t, string(pdf), order.ID)

	_, err = f.uc.Receipt(ctx, f.newUser(t), order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestAddItem_ConcurrenteNoSobrevende(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.newProduct(t, "10.00", 5)

	const buyers = 20
	users := make([]string, buyers)
	for i := range users {
		users[i] = f.newUser(t)
	}

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.uc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: productID, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(users[i])
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, buyers-5, rejected)

	held, err := f.repos.CartItems.SumOpenQuantityByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 5, held, fmt.Sprintf("retenido %d > disponibles", held))
}
