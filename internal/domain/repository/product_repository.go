package repository

import (
	"context"

	"github.com/jhoicas/crochet-api/internal/domain/entity"
)

// Campos de ordenamiento aceptados por Search.
const (
	SortByID        = "id"
	SortByName      = "name"
	SortByCreatedAt = "created_at"
	SortByPrice     = "price"
)

// ProductFilter criterios de búsqueda del catálogo.
type ProductFilter struct {
	NameContains string // case-insensitive; vacío = sin filtro
	ListedOnly   bool
	SortBy       string
	Desc         bool
	Limit        int
	Offset       int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Solo maneja la fila del producto: precios e imágenes tienen su propio repositorio.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// LockByID igual que GetByID pero bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	LockByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// Search devuelve la página pedida y el total de coincidencias.
	Search(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
}
