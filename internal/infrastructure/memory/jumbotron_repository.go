package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var _ repository.JumbotronRepository = (*JumbotronRepo)(nil)

// JumbotronRepo banners en memoria.
type JumbotronRepo struct {
	s *session
}

func (r *JumbotronRepo) Create(_ context.Context, c *entity.JumbotronContent) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.images[c.ImageID]; !ok {
			return domain.ErrNotFound
		}
		st.jumbotron[c.ID] = *c
		return nil
	})
}

func (r *JumbotronRepo) GetByID(_ context.Context, id string) (*entity.JumbotronContent, error) {
	var out *entity.JumbotronContent
	err := r.s.do(func(st *state) error {
		c, ok := st.jumbotron[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *JumbotronRepo) Update(_ context.Context, c *entity.JumbotronContent) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.jumbotron[c.ID]; !ok {
			return domain.ErrNotFound
		}
		st.jumbotron[c.ID] = *c
		return nil
	})
}

func (r *JumbotronRepo) Delete(_ context.Context, id string) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.jumbotron[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.jumbotron, id)
		return nil
	})
}

func (r *JumbotronRepo) List(_ context.Context) ([]*entity.JumbotronContent, error) {
	var out []*entity.JumbotronContent
	err := r.s.do(func(st *state) error {
		for _, c := range st.jumbotron {
			out = append(out, &c)
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
