package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes y sus líneas (order_lines, numeradas por line_no).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la cabecera y copia las líneas. Debe ir dentro de una transacción.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO orders (id, user_id, total, created_at)
		VALUES ($1, $2, $3, $4)`,
		order.ID, order.UserID, order.Total, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	if len(order.Lines) == 0 {
		return nil
	}
	_, err = r.q.CopyFrom(ctx,
		pgx.Identifier{"order_lines"},
		[]string{"order_id", "line_no", "product_id", "product_name", "quantity", "unit_price", "subtotal"},
		pgx.CopyFromSlice(len(order.Lines), func(i int) ([]any, error) {
			l := order.Lines[i]
			return []any{order.ID, i + 1, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice, l.Subtotal}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy order lines: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.q.QueryRow(ctx, `SELECT id, user_id, total, created_at FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.UserID, &o.Total, &o.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get order")
	}
	lines, err := r.lines(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, total, created_at FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, notFound(err, "list orders")
	}
	var (
		list []*entity.Order
		ids  []string
	)
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	lines, err := r.lines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Lines = lines[o.ID]
	}
	return list, nil
}

// lines carga las líneas de varias órdenes en una sola consulta.
func (r *OrderRepo) lines(ctx context.Context, orderIDs []string) (map[string][]entity.OrderLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT order_id, product_id, product_name, quantity, unit_price, subtotal
		FROM order_lines WHERE order_id = ANY($1)
		ORDER BY order_id, line_no`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.OrderLine, len(orderIDs))
	for rows.Next() {
		var (
			orderID string
			l       entity.OrderLine
		)
		if err := rows.Scan(&orderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		out[orderID] = append(out[orderID], l)
	}
	return out, rows.Err()
}
