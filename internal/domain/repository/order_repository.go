package repository

import (
	"context"

	"github.com/jhoicas/crochet-api/internal/domain/entity"
)

// OrderRepository persiste órdenes junto con sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// ListByUser devuelve las órdenes del usuario, la más reciente primero.
	ListByUser(ctx context.Context, userID string) ([]*entity.Order, error)
}
