package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `p.id, p.name, p.description, p.listed_for_sale, p.created_at, p.updated_at`

// sortColumns columnas permitidas en ORDER BY; el precio sale del LEFT JOIN con el precio vigente.
var sortColumns = map[string]string{
	repository.SortByID:        "p.id",
	repository.SortByName:      "p.name",
	repository.SortByCreatedAt: "p.created_at",
	repository.SortByPrice:     "pp.amount",
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto (sin precios ni imágenes).
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, name, description, listed_for_sale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.ListedForSale, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
}

// LockByID obtiene el producto bloqueando su fila (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *ProductRepo) LockByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) get(ctx context.Context, query, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.ListedForSale, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "get product")
	}
	return &p, nil
}

// Update actualiza nombre, descripción y publicación. El precio se maneja en el libro de precios.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, listed_for_sale = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.ListedForSale, product.UpdatedAt,
	)
	if err != nil {
		return notFound(err, "update product")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search filtra, ordena y pagina. Los productos sin precio vigente van al final en ambas direcciones.
func (r *ProductRepo) Search(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = sortColumns[repository.SortByID]
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}

	const from = `
		FROM products p
		LEFT JOIN product_prices pp ON pp.product_id = p.id AND pp.until IS NULL
		WHERE ($1 = '' OR p.name ILIKE $2)
		  AND (NOT $3 OR p.listed_for_sale)`
	args := []any{f.NameContains, likePattern(f.NameContains), f.ListedOnly}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	if total == 0 {
		return []*entity.Product{}, 0, nil
	}

	limit := any(nil) // LIMIT NULL = sin límite
	if f.Limit > 0 {
		limit = f.Limit
	}
	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s NULLS LAST, p.id %s LIMIT $4 OFFSET $5`,
		productColumns, from, col, dir, dir)
	rows, err := r.q.Query(ctx, query, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Product, 0, max(f.Limit, 0))
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.ListedForSale, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, total, rows.Err()
}
