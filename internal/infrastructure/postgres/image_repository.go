package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var _ repository.ImageRepository = (*ImageRepo)(nil)

const imageColumns = `id, name, remote_public_id, url, kind, product_id, priority, created_at`

// ImageRepo referencias a imágenes del asset host.
type ImageRepo struct {
	q Querier
}

// NewImageRepository construye el adaptador. Pasar pool o tx (Querier).
func NewImageRepository(q Querier) *ImageRepo {
	return &ImageRepo{q: q}
}

func (r *ImageRepo) Create(ctx context.Context, img *entity.Image) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO images (`+imageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		img.ID, img.Name, img.RemotePublicID, img.URL, img.Kind, img.ProductID, img.Priority, img.CreatedAt,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrNotFound
	default:
		return fmt.Errorf("insert image: %w", err)
	}
}

func (r *ImageRepo) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	var img entity.Image
	err := r.q.QueryRow(ctx, `SELECT `+imageColumns+` FROM images WHERE id = $1`, id).Scan(
		&img.ID, &img.Name, &img.RemotePublicID, &img.URL, &img.Kind, &img.ProductID, &img.Priority, &img.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "get image")
	}
	return &img, nil
}

// Update cambia tipo, producto y prioridad (la referencia remota no cambia).
func (r *ImageRepo) Update(ctx context.Context, img *entity.Image) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE images SET name = $2, kind = $3, product_id = $4, priority = $5
		WHERE id = $1`,
		img.ID, img.Name, img.Kind, img.ProductID, img.Priority,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return notFound(err, "update image")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ImageRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return notFound(err, "delete image")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ImageRepo) ListByProduct(ctx context.Context, productID string) ([]entity.Image, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+imageColumns+` FROM images
		WHERE product_id = $1
		ORDER BY priority, created_at, id`, productID)
	if err != nil {
		return nil, notFound(err, "list product images")
	}
	defer rows.Close()
	var list []entity.Image
	for rows.Next() {
		var img entity.Image
		if err := rows.Scan(&img.ID, &img.Name, &img.RemotePublicID, &img.URL, &img.Kind, &img.ProductID, &img.Priority, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		list = append(list, img)
	}
	return list, rows.Err()
}
