package repository

import (
	"context"

	"github.com/jhoicas/crochet-api/internal/domain/entity"
)

// JumbotronRepository persiste los banners de portada.
type JumbotronRepository interface {
	Create(ctx context.Context, content *entity.JumbotronContent) error
	GetByID(ctx context.Context, id string) (*entity.JumbotronContent, error)
	Update(ctx context.Context, content *entity.JumbotronContent) error
	Delete(ctx context.Context, id string) error
	// List ordena por prioridad ascendente.
	List(ctx context.Context) ([]*entity.JumbotronContent, error)
}
