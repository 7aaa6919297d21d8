package dto

import "time"

// UpdateStockRequest body para POST /inventory/update-stock: agrega Quantity unidades nuevas.
type UpdateStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// StockItemsRequest filtros de GET /inventory/items.
type StockItemsRequest struct {
	ProductID string `query:"productId"`
	Sold      *bool  `query:"sold"`
}

// StockUnitResponse unidad de inventario.
type StockUnitResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	OrderID   *string   `json:"order_id,omitempty"`
	Sold      bool      `json:"sold"`
	CreatedAt time.Time `json:"created_at"`
}

// StockSummaryResponse conteo de unidades de un producto.
type StockSummaryResponse struct {
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
	Sold      int    `json:"sold"`
	Held      int    `json:"held"` // retenido por carritos abiertos
}
