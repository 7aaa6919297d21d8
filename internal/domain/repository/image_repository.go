package repository

import (
	"context"

	"github.com/jhoicas/crochet-api/internal/domain/entity"
)

// ImageRepository persiste las referencias a imágenes del asset host.
type ImageRepository interface {
	Create(ctx context.Context, img *entity.Image) error
	GetByID(ctx context.Context, id string) (*entity.Image, error)
	Update(ctx context.Context, img *entity.Image) error
	Delete(ctx context.Context, id string) error
	// ListByProduct devuelve las imágenes del producto ordenadas por prioridad.
	ListByProduct(ctx context.Context, productID string) ([]entity.Image, error)
}
