package ports

import (
	"context"

	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback y ningún cambio queda persistido.
type TxRunner interface {
	Run(ctx context.Context, fn func(r repository.Repos) error) error
}
