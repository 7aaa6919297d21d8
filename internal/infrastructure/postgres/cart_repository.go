package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var (
	_ repository.CartRepository     = (*CartRepo)(nil)
	_ repository.CartItemRepository = (*CartItemRepo)(nil)
)

// CartRepo carritos (uno por usuario, UNIQUE user_id).
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

func (r *CartRepo) Create(ctx context.Context, cart *entity.Cart) error {
	_, err := r.q.Exec(ctx, `INSERT INTO carts (id, user_id, created_at) VALUES ($1, $2, $3)`,
		cart.ID, cart.UserID, cart.CreatedAt)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrUserNotFound
	default:
		return fmt.Errorf("insert cart: %w", err)
	}
}

func (r *CartRepo) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	var c entity.Cart
	err := r.q.QueryRow(ctx, `SELECT id, user_id, created_at FROM carts WHERE user_id = $1`, userID).
		Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get cart")
	}
	return &c, nil
}

const cartItemColumns = `id, cart_id, product_id, quantity, order_id, created_at, updated_at`

// CartItemRepo líneas de carrito. Una línea con order_id ya no está en el carrito.
type CartItemRepo struct {
	q Querier
}

// NewCartItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCartItemRepository(q Querier) *CartItemRepo {
	return &CartItemRepo{q: q}
}

func (r *CartItemRepo) Create(ctx context.Context, item *entity.CartItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cart_items (`+cartItemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.CartID, item.ProductID, item.Quantity, item.OrderID, item.CreatedAt, item.UpdatedAt,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrNotFound
	default:
		return fmt.Errorf("insert cart item: %w", err)
	}
}

// Update solo cambia la cantidad de una línea abierta.
func (r *CartItemRepo) Update(ctx context.Context, item *entity.CartItem) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE cart_items SET quantity = $2, updated_at = $3
		WHERE id = $1 AND order_id IS NULL`,
		item.ID, item.Quantity, item.UpdatedAt,
	)
	if err != nil {
		return notFound(err, "update cart item")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CartItemRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND order_id IS NULL`, id)
	if err != nil {
		return notFound(err, "delete cart item")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CartItemRepo) GetByID(ctx context.Context, id string) (*entity.CartItem, error) {
	var it entity.CartItem
	err := r.q.QueryRow(ctx, `SELECT `+cartItemColumns+` FROM cart_items WHERE id = $1`, id).Scan(
		&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.OrderID, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "get cart item")
	}
	return &it, nil
}

func (r *CartItemRepo) ListOpenByCart(ctx context.Context, cartID string) ([]entity.CartItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+cartItemColumns+` FROM cart_items
		WHERE cart_id = $1 AND order_id IS NULL
		ORDER BY created_at, id`, cartID)
	if err != nil {
		return nil, notFound(err, "list cart items")
	}
	defer rows.Close()
	var list []entity.CartItem
	for rows.Next() {
		var it entity.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.OrderID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *CartItemRepo) FindOpenByCartAndProduct(ctx context.Context, cartID, productID string) (*entity.CartItem, error) {
	var it entity.CartItem
	err := r.q.QueryRow(ctx, `
		SELECT `+cartItemColumns+` FROM cart_items
		WHERE cart_id = $1 AND product_id = $2 AND order_id IS NULL`, cartID, productID).Scan(
		&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.OrderID, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "find cart item")
	}
	return &it, nil
}

func (r *CartItemRepo) SumOpenQuantityByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)::int FROM cart_items
		WHERE product_id = $1 AND order_id IS NULL`, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sum held quantity: %w", err)
	}
	return n, nil
}

func (r *CartItemRepo) AttachOrder(ctx context.Context, itemIDs []string, orderID string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE cart_items SET order_id = $2, updated_at = now()
		WHERE id = ANY($1) AND order_id IS NULL`, itemIDs, orderID)
	if err != nil {
		return fmt.Errorf("attach order to cart items: %w", err)
	}
	if cmd.RowsAffected() != int64(len(itemIDs)) {
		return domain.ErrNotFound
	}
	return nil
}
