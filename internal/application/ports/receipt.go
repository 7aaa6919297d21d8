package ports

import (
	"context"

	"github.com/jhoicas/crochet-api/internal/domain/entity"
)

// ReceiptGenerator genera el comprobante PDF de una orden.
type ReceiptGenerator interface {
	GenerateReceipt(ctx context.Context, order *entity.Order, user *entity.User) ([]byte, error)
}
