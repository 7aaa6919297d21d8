package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var _ repository.PriceRepository = (*PriceRepo)(nil)

// PriceRepo libro de precios sobre la tabla product_prices.
// El índice único parcial product_prices_effective_uq impide dos precios vigentes por producto.
type PriceRepo struct {
	q Querier
}

// NewPriceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPriceRepository(q Querier) *PriceRepo {
	return &PriceRepo{q: q}
}

func (r *PriceRepo) Create(ctx context.Context, price *entity.ProductPrice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_prices (id, product_id, amount, as_of, until)
		VALUES ($1, $2, $3, $4, $5)`,
		price.ID, price.ProductID, price.Amount, price.AsOf, price.Until,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrNotFound
	default:
		return fmt.Errorf("insert product price: %w", err)
	}
}

func (r *PriceRepo) Expire(ctx context.Context, id string, until time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE product_prices SET until = $2 WHERE id = $1 AND until IS NULL`, id, until)
	if err != nil {
		return notFound(err, "expire product price")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PriceRepo) ListByProduct(ctx context.Context, productID string) ([]entity.ProductPrice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, amount, as_of, until
		FROM product_prices WHERE product_id = $1
		ORDER BY (until IS NULL), as_of, id`, productID)
	if err != nil {
		return nil, notFound(err, "list product prices")
	}
	defer rows.Close()
	var list []entity.ProductPrice
	for rows.Next() {
		var p entity.ProductPrice
		if err := rows.Scan(&p.ID, &p.ProductID, &p.Amount, &p.AsOf, &p.Until); err != nil {
			return nil, fmt.Errorf("scan product price: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PriceRepo) GetEffective(ctx context.Context, productID string) (entity.ProductPrice, bool, error) {
	var p entity.ProductPrice
	err := r.q.QueryRow(ctx, `
		SELECT id, product_id, amount, as_of, until
		FROM product_prices WHERE product_id = $1 AND until IS NULL`, productID,
	).Scan(&p.ID, &p.ProductID, &p.Amount, &p.AsOf, &p.Until)
	if err != nil {
		err = notFound(err, "get effective price")
		if errors.Is(err, domain.ErrNotFound) {
			return entity.ProductPrice{}, false, nil
		}
		return entity.ProductPrice{}, false, err
	}
	return p, true, nil
}

func (r *PriceRepo) GetEffectiveByProducts(ctx context.Context, productIDs []string) (map[string]entity.ProductPrice, error) {
	out := make(map[string]entity.ProductPrice, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, amount, as_of, until
		FROM product_prices WHERE product_id = ANY($1) AND until IS NULL`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get effective prices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.ProductPrice
		if err := rows.Scan(&p.ID, &p.ProductID, &p.Amount, &p.AsOf, &p.Until); err != nil {
			return nil, fmt.Errorf("scan effective price: %w", err)
		}
		out[p.ProductID] = p
	}
	return out, rows.Err()
}
