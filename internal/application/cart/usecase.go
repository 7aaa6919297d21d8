// Package cart implementa la conciliación del carrito contra el inventario y el checkout.
//
// Cada mutación corre en una transacción que primero bloquea la fila del producto
// (SELECT ... FOR UPDATE) y recién después lee el stock, verifica y escribe. Dos
// carritos que compiten por el mismo producto quedan serializados y no hay sobreventa.
package cart

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/inventory"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
	"github.com/jhoicas/crochet-api/internal/metrics"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// OrderPlacedEvent payload de order.placed.
type OrderPlacedEvent struct {
	OrderID string            `json:"order_id"`
	UserID  string            `json:"user_id"`
	Total   decimal.Decimal   `json:"total"`
	Lines   []OrderPlacedLine `json:"lines"`
}

// OrderPlacedLine producto y cantidad vendida.
type OrderPlacedLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UseCase casos de uso del carrito y las órdenes del usuario autenticado.
type UseCase struct {
	txRunner ports.TxRunner
	repos    repository.Repos
	cache    ports.ProductCache
	events   ports.EventPublisher
	receipts ports.ReceiptGenerator
	metrics  *metrics.StoreMetrics
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner ports.TxRunner,
	repos repository.Repos,
	cache ports.ProductCache,
	events ports.EventPublisher,
	receipts ports.ReceiptGenerator,
	m *metrics.StoreMetrics,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		repos:    repos,
		cache:    cache,
		events:   events,
		receipts: receipts,
		metrics:  m,
		log:      log.Component("cart"),
		now:      time.Now,
	}
}

// GetItems líneas abiertas del carrito del usuario.
func (uc *UseCase) GetItems(ctx context.Context, userID string) ([]dto.CartItemResponse, error) {
	c, err := uc.repos.Carts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []dto.CartItemResponse{}, nil
		}
		return nil, err
	}
	items, err := uc.repos.CartItems.ListOpenByCart(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CartItemResponse, 0, len(items))
	for _, it := range items {
		resp, err := itemResponse(ctx, uc.repos, it)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// AddItem agrega quantity unidades del producto. Si ya hay una línea abierta del mismo producto
// se suma a ella en lugar de crear otra.
func (uc *UseCase) AddItem(ctx context.Context, userID string, in dto.AddCartItemRequest) (*dto.CartItemResponse, error) {
	if in.ProductID == "" || in.Quantity < 1 {
		return nil, domain.ErrInvalidInput
	}

	var item entity.CartItem
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		c, err := cartFor(ctx, r, userID, uc.now())
		if err != nil {
			return err
		}
		p, err := r.Products.LockByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if !p.ListedForSale {
			return domain.ErrNotListable
		}
		ledger := inventory.NewStockLedger(r)

		existing, err := r.CartItems.FindOpenByCartAndProduct(ctx, c.ID, in.ProductID)
		switch {
		case err == nil:
			total := existing.Quantity + in.Quantity
			if err := uc.reserve(ctx, ledger, in.ProductID, total, existing.Quantity); err != nil {
				return err
			}
			existing.Quantity = total
			existing.UpdatedAt = uc.now()
			item = *existing
			return r.CartItems.Update(ctx, existing)
		case errors.Is(err, domain.ErrNotFound):
			if err := uc.reserve(ctx, ledger, in.ProductID, in.Quantity, 0); err != nil {
				return err
			}
			now := uc.now()
			item = entity.CartItem{
				ID:        uuid.New().String(),
				CartID:    c.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return r.CartItems.Create(ctx, &item)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug().Str("user_id", userID).Str("product_id", in.ProductID).Int("quantity", item.Quantity).Msg("producto agregado al carrito")
	return itemResponse(ctx, uc.repos, item)
}

// UpdateQuantity cambia la cantidad de una línea. Si no hay stock la cantidad guardada no cambia.
func (uc *UseCase) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*dto.CartItemResponse, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidInput
	}

	var item entity.CartItem
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		found, err := ownedItem(ctx, r, userID, itemID)
		if err != nil {
			return err
		}
		if _, err := r.Products.LockByID(ctx, found.ProductID); err != nil {
			return err
		}
		// releer con el producto ya bloqueado
		current, err := ownedItem(ctx, r, userID, itemID)
		if err != nil {
			return err
		}
		if err := uc.reserve(ctx, inventory.NewStockLedger(r), current.ProductID, quantity, current.Quantity); err != nil {
			return err
		}
		current.Quantity = quantity
		current.UpdatedAt = uc.now()
		item = *current
		return r.CartItems.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	return itemResponse(ctx, uc.repos, item)
}

// DeleteItem quita la línea del carrito. Libera la retención implícita; no consulta stock.
func (uc *UseCase) DeleteItem(ctx context.Context, userID, itemID string) error {
	return uc.txRunner.Run(ctx, func(r repository.Repos) error {
		if _, err := ownedItem(ctx, r, userID, itemID); err != nil {
			return err
		}
		return r.CartItems.Delete(ctx, itemID)
	})
}

// Checkout convierte las líneas abiertas en una orden: elige unidades concretas, las marca vendidas
// y asocia las líneas a la orden. Los productos se bloquean en orden ascendente de ID.
func (uc *UseCase) Checkout(ctx context.Context, userID string) (*dto.OrderResponse, error) {
	start := time.Now()
	var (
		order *entity.Order
		units int
	)
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		c, err := r.Carts.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		items, err := r.CartItems.ListOpenByCart(ctx, c.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrInvalidInput
		}

		productIDs := make([]string, 0, len(items))
		for _, it := range items {
			productIDs = append(productIDs, it.ProductID)
		}
		slices.Sort(productIDs)
		productIDs = slices.Compact(productIDs)
		products := make(map[string]*entity.Product, len(productIDs))
		for _, id := range productIDs {
			p, err := r.Products.LockByID(ctx, id)
			if err != nil {
				return err
			}
			products[id] = p
		}

		now := uc.now()
		order = &entity.Order{ID: uuid.New().String(), UserID: userID, Total: decimal.Zero, CreatedAt: now}
		picked := make([]entity.StockUnit, 0)
		itemIDs := make([]string, 0, len(items))
		for _, it := range items {
			p := products[it.ProductID]
			price, ok, err := r.Prices.GetEffective(ctx, p.ID)
			if err != nil {
				return err
			}
			if !p.ListedForSale || !ok {
				return domain.ErrNotListable
			}
			chosen, err := r.Stock.PickAvailable(ctx, p.ID, it.Quantity)
			if err != nil {
				return err
			}
			if len(chosen) < it.Quantity {
				return domain.ErrInsufficientStock
			}
			picked = append(picked, chosen...)
			itemIDs = append(itemIDs, it.ID)

			subtotal := price.Amount.Mul(decimal.NewFromInt(int64(it.Quantity)))
			order.Lines = append(order.Lines, entity.OrderLine{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				UnitPrice:   price.Amount,
				Subtotal:    subtotal,
			})
			order.Total = order.Total.Add(subtotal)
		}

		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}
		if err := inventory.NewStockLedger(r).MarkSold(ctx, picked, order.ID); err != nil {
			return err
		}
		units = len(picked)
		return r.CartItems.AttachOrder(ctx, itemIDs, order.ID)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordOrderPlaced(units, time.Since(start))
	ids := make([]string, 0, len(order.Lines))
	lines := make([]OrderPlacedLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		ids = append(ids, l.ProductID)
		lines = append(lines, OrderPlacedLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	if err := uc.cache.Invalidate(ctx, ids...); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar cache de productos")
	}
	if err := uc.events.Publish(ctx, ports.Event{
		Type:       ports.EventOrderPlaced,
		Key:        order.ID,
		Payload:    OrderPlacedEvent{OrderID: order.ID, UserID: userID, Total: order.Total, Lines: lines},
		OccurredAt: order.CreatedAt,
	}); err != nil {
		uc.log.Warn().Err(err).Str("order_id", order.ID).Msg("no se pudo publicar evento")
	}
	uc.log.Info().Str("order_id", order.ID).Str("user_id", userID).Str("total", order.Total.StringFixed(2)).Int("units", units).Msg("orden creada")

	resp := dto.FromOrder(order)
	return &resp, nil
}

// ListOrders órdenes del usuario, la más reciente primero.
func (uc *UseCase) ListOrders(ctx context.Context, userID string) ([]dto.OrderResponse, error) {
	orders, err := uc.repos.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.FromOrder(o))
	}
	return out, nil
}

// Receipt genera el comprobante PDF de una orden propia.
func (uc *UseCase) Receipt(ctx context.Context, userID, orderID string) ([]byte, error) {
	order, err := uc.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrNotFound
	}
	user, err := uc.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.receipts.GenerateReceipt(ctx, order, user)
}

func (uc *UseCase) reserve(ctx context.Context, ledger *inventory.StockLedger, productID string, requested, alreadyHeld int) error {
	err := ledger.ReserveOrFail(ctx, productID, requested, alreadyHeld)
	switch {
	case err == nil:
		uc.metrics.RecordReservation(metrics.ReservationOK)
	case errors.Is(err, domain.ErrInsufficientStock):
		uc.metrics.RecordReservation(metrics.ReservationInsufficient)
	}
	return err
}

// cartFor devuelve el carrito del usuario y lo crea si todavía no existe.
func cartFor(ctx context.Context, r repository.Repos, userID string, now time.Time) (*entity.Cart, error) {
	c, err := r.Carts.GetByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	c = &entity.Cart{ID: uuid.New().String(), UserID: userID, CreatedAt: now}
	if err := r.Carts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ownedItem devuelve la línea solo si está abierta y pertenece al carrito del usuario.
func ownedItem(ctx context.Context, r repository.Repos, userID, itemID string) (*entity.CartItem, error) {
	c, err := r.Carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	it, err := r.CartItems.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.CartID != c.ID || !it.Open() {
		return nil, domain.ErrNotFound
	}
	return it, nil
}

func itemResponse(ctx context.Context, r repository.Repos, it entity.CartItem) (*dto.CartItemResponse, error) {
	p, err := r.Products.GetByID(ctx, it.ProductID)
	if err != nil {
		return nil, err
	}
	price, ok, err := r.Prices.GetEffective(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if ok {
		p.Prices = []entity.ProductPrice{price}
	}
	if p.Images, err = r.Images.ListByProduct(ctx, p.ID); err != nil {
		return nil, err
	}
	return &dto.CartItemResponse{
		ID:        it.ID,
		ProductID: it.ProductID,
		Product:   dto.FromProduct(p),
		Quantity:  it.Quantity,
	}, nil
}
