package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var _ repository.JumbotronRepository = (*JumbotronRepo)(nil)

// JumbotronRepo banners de portada.
type JumbotronRepo struct {
	q Querier
}

// NewJumbotronRepository construye el adaptador. Pasar pool o tx (Querier).
func NewJumbotronRepository(q Querier) *JumbotronRepo {
	return &JumbotronRepo{q: q}
}

func (r *JumbotronRepo) Create(ctx context.Context, c *entity.JumbotronContent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO jumbotron_contents (id, image_id, url, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.ImageID, c.URL, c.Priority, c.CreatedAt, c.UpdatedAt,
	)
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return domain.ErrNotFound
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	default:
		return fmt.Errorf("insert jumbotron content: %w", err)
	}
}

func (r *JumbotronRepo) GetByID(ctx context.Context, id string) (*entity.JumbotronContent, error) {
	var c entity.JumbotronContent
	err := r.q.QueryRow(ctx, `
		SELECT id, image_id, url, priority, created_at, updated_at
		FROM jumbotron_contents WHERE id = $1`, id).
		Scan(&c.ID, &c.ImageID, &c.URL, &c.Priority, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "get jumbotron content")
	}
	return &c, nil
}

func (r *JumbotronRepo) Update(ctx context.Context, c *entity.JumbotronContent) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE jumbotron_contents SET image_id = $2, url = $3, priority = $4, updated_at = $5
		WHERE id = $1`,
		c.ID, c.ImageID, c.URL, c.Priority, c.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) || isUniqueViolation(err) {
			return domain.ErrInvalidInput
		}
		return notFound(err, "update jumbotron content")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *JumbotronRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM jumbotron_contents WHERE id = $1`, id)
	if err != nil {
		return notFound(err, "delete jumbotron content")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *JumbotronRepo) List(ctx context.Context) ([]*entity.JumbotronContent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, image_id, url, priority, created_at, updated_at
		FROM jumbotron_contents
		ORDER BY priority, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list jumbotron contents: %w", err)
	}
	defer rows.Close()
	var list []*entity.JumbotronContent
	for rows.Next() {
		var c entity.JumbotronContent
		if err := rows.Scan(&c.ID, &c.ImageID, &c.URL, &c.Priority, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan jumbotron content: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
