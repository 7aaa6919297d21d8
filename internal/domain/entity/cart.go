package entity

import "time"

// Cart es el carrito de un usuario (uno por usuario).
type Cart struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// CartItem es una línea del carrito. Su cantidad retiene stock de forma implícita
// hasta el checkout, cuando OrderID se asigna y la línea sale del carrito.
type CartItem struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int
	OrderID   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open indica si la línea sigue en el carrito (no asociada a una orden).
func (i CartItem) Open() bool {
	return i.OrderID == nil
}
