package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto (el alta es por lote).
type CreateProductRequest struct {
	Name          string           `json:"name" validate:"required,min=1,max=200"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	ListedForSale *bool            `json:"listed_for_sale"`
	ImageIDs      []string         `json:"image_ids"`
}

// UpdateProductRequest actualización parcial: solo se aplican los campos no nulos.
// ImageIDs no nulo reemplaza el conjunto completo de imágenes.
type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	ListedForSale *bool            `json:"listed_for_sale"`
	ImageIDs      *[]string        `json:"image_ids"`
}

// ProductImageResponse imagen asociada a un producto.
type ProductImageResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Priority int    `json:"priority"`
}

// ProductResponse salida de un producto con su precio vigente.
// Price es nil cuando el producto no tiene precio vigente.
type ProductResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	Price         *decimal.Decimal       `json:"price,omitempty"`
	ListedForSale bool                   `json:"listed_for_sale"`
	Images        []ProductImageResponse `json:"images"`
	Available     *int                   `json:"available,omitempty"`
	Sold          *int                   `json:"sold,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// PriceHistoryEntry entrada del libro de precios (solo administradores).
type PriceHistoryEntry struct {
	Amount decimal.Decimal `json:"amount"`
	AsOf   time.Time       `json:"as_of"`
	Until  *time.Time      `json:"until,omitempty"`
}

// ProductSearchRequest criterios de búsqueda (query string).
type ProductSearchRequest struct {
	Page          int    `query:"page"`
	PageSize      int    `query:"page_size"`
	Name          string `query:"name"`
	SortBy        string `query:"sort_by"`
	SortDirection string `query:"sort_direction"`
}

// ProductSearchResponse página de resultados de la búsqueda.
type ProductSearchResponse struct {
	PageIndex       int               `json:"page_index"`
	PageSize        int               `json:"page_size"`
	NumberOfResults int               `json:"number_of_results"`
	MaxPageIndex    int               `json:"max_page_index"`
	PageData        []ProductResponse `json:"page_data"`
}
