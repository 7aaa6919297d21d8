package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var _ repository.StockUnitRepository = (*StockUnitRepo)(nil)

// StockUnitRepo implementación de StockUnitRepository sobre PostgreSQL (usable con pool o tx).
type StockUnitRepo struct {
	q Querier
}

// NewStockUnitRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockUnitRepository(q Querier) *StockUnitRepo {
	return &StockUnitRepo{q: q}
}

// CreateBatch inserta las unidades con COPY.
func (r *StockUnitRepo) CreateBatch(ctx context.Context, units []entity.StockUnit) error {
	if len(units) == 0 {
		return nil
	}
	_, err := r.q.CopyFrom(ctx,
		pgx.Identifier{"stock_units"},
		[]string{"id", "product_id", "order_id", "created_at"},
		pgx.CopyFromSlice(len(units), func(i int) ([]any, error) {
			u := units[i]
			return []any{u.ID, u.ProductID, u.OrderID, u.CreatedAt}, nil
		}),
	)
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return domain.ErrNotFound
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	default:
		return fmt.Errorf("copy stock units: %w", err)
	}
}

func (r *StockUnitRepo) CountAvailable(ctx context.Context, productID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM stock_units WHERE product_id = $1 AND order_id IS NULL`, productID)
}

func (r *StockUnitRepo) CountSold(ctx context.Context, productID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM stock_units WHERE product_id = $1 AND order_id IS NOT NULL`, productID)
}

func (r *StockUnitRepo) count(ctx context.Context, query, productID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, query, productID).Scan(&n); err != nil {
		if hasCode(err, "22P02") {
			return 0, nil
		}
		return 0, fmt.Errorf("count stock units: %w", err)
	}
	return n, nil
}

// List arma el WHERE según los filtros presentes.
func (r *StockUnitRepo) List(ctx context.Context, f repository.StockFilter) ([]entity.StockUnit, error) {
	var (
		where []string
		args  []any
	)
	if f.ProductID != nil {
		args = append(args, *f.ProductID)
		where = append(where, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if f.Sold != nil {
		if *f.Sold {
			where = append(where, "order_id IS NOT NULL")
		} else {
			where = append(where, "order_id IS NULL")
		}
	}
	query := `SELECT id, product_id, order_id, created_at FROM stock_units`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"
	return r.query(ctx, query, args...)
}

// PickAvailable toma las n unidades libres más antiguas y las bloquea hasta el fin de la tx.
func (r *StockUnitRepo) PickAvailable(ctx context.Context, productID string, n int) ([]entity.StockUnit, error) {
	if n < 1 {
		return nil, nil
	}
	return r.query(ctx, `
		SELECT id, product_id, order_id, created_at FROM stock_units
		WHERE product_id = $1 AND order_id IS NULL
		ORDER BY created_at, id
		LIMIT $2
		FOR UPDATE`, productID, n)
}

// MarkSold solo toca unidades libres; si alguna ya estaba vendida devuelve ErrNotFound
// y la transacción que lo llama hace rollback.
func (r *StockUnitRepo) MarkSold(ctx context.Context, unitIDs []string, orderID string) error {
	if len(unitIDs) == 0 {
		return nil
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_units SET order_id = $2
		WHERE id = ANY($1) AND order_id IS NULL`, unitIDs, orderID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("mark stock units sold: %w", err)
	}
	if cmd.RowsAffected() != int64(len(unitIDs)) {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StockUnitRepo) query(ctx context.Context, query string, args ...any) ([]entity.StockUnit, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, notFound(err, "list stock units")
	}
	defer rows.Close()
	var list []entity.StockUnit
	for rows.Next() {
		var u entity.StockUnit
		if err := rows.Scan(&u.ID, &u.ProductID, &u.OrderID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock unit: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
