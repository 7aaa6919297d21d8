package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddCartItemRequest body para POST /user/cart/add.
type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest body para PATCH /user/cart/item/:id.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartItemResponse línea del carrito con el producto resuelto.
type CartItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Product   ProductResponse `json:"product"`
	Quantity  int             `json:"quantity"`
}

// OrderLineResponse línea de una orden.
type OrderLineResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderResponse orden generada en el checkout.
type OrderResponse struct {
	ID        string              `json:"id"`
	Total     decimal.Decimal     `json:"total"`
	Lines     []OrderLineResponse `json:"lines"`
	CreatedAt time.Time           `json:"created_at"`
}
