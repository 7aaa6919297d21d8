package repository

import (
	"context"

	"github.com/jhoicas/crochet-api/internal/domain/entity"
)

// CartRepository persiste el carrito (uno por usuario).
type CartRepository interface {
	Create(ctx context.Context, cart *entity.Cart) error
	GetByUserID(ctx context.Context, userID string) (*entity.Cart, error)
}

// CartItemRepository persiste las líneas del carrito.
// Las consultas "Open" excluyen las líneas ya asociadas a una orden.
type CartItemRepository interface {
	Create(ctx context.Context, item *entity.CartItem) error
	Update(ctx context.Context, item *entity.CartItem) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.CartItem, error)
	ListOpenByCart(ctx context.Context, cartID string) ([]entity.CartItem, error)
	FindOpenByCartAndProduct(ctx context.Context, cartID, productID string) (*entity.CartItem, error)
	// SumOpenQuantityByProduct suma lo retenido por todas las líneas abiertas del producto.
	SumOpenQuantityByProduct(ctx context.Context, productID string) (int, error)
	AttachOrder(ctx context.Context, itemIDs []string, orderID string) error
}
