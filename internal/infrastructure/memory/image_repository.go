package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var _ repository.ImageRepository = (*ImageRepo)(nil)

// ImageRepo referencias a imágenes en memoria.
type ImageRepo struct {
	s *session
}

func (r *ImageRepo) Create(_ context.Context, img *entity.Image) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.images[img.ID]; ok {
			return domain.ErrDuplicate
		}
		st.images[img.ID] = *img
		return nil
	})
}

func (r *ImageRepo) GetByID(_ context.Context, id string) (*entity.Image, error) {
	var out *entity.Image
	err := r.s.do(func(st *state) error {
		img, ok := st.images[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &img
		return nil
	})
	return out, err
}

func (r *ImageRepo) Update(_ context.Context, img *entity.Image) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.images[img.ID]; !ok {
			return domain.ErrNotFound
		}
		st.images[img.ID] = *img
		return nil
	})
}

func (r *ImageRepo) Delete(_ context.Context, id string) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.images[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.images, id)
		return nil
	})
}

func (r *ImageRepo) ListByProduct(_ context.Context, productID string) ([]entity.Image, error) {
	var out []entity.Image
	err := r.s.do(func(st *state) error {
		for _, img := range st.images {
			if img.ProductID != nil && *img.ProductID == productID {
				out = append(out, img)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Priority != out[j].Priority {
				return out[i].Priority < out[j].Priority
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}
