package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes en memoria. Las líneas se copian al guardar y al leer.
type OrderRepo struct {
	s *session
}

func (r *OrderRepo) Create(_ context.Context, order *entity.Order) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.orders[order.ID]; ok {
			return domain.ErrDuplicate
		}
		row := *order
		row.Lines = slices.Clone(order.Lines)
		st.orders[row.ID] = row
		return nil
	})
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.s.do(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrNotFound
		}
		o.Lines = slices.Clone(o.Lines)
		out = &o
		return nil
	})
	return out, err
}

func (r *OrderRepo) ListByUser(_ context.Context, userID string) ([]*entity.Order, error) {
	var out []*entity.Order
	err := r.s.do(func(st *state) error {
		for _, o := range st.orders {
			if o.UserID != userID {
				continue
			}
			o.Lines = slices.Clone(o.Lines)
			out = append(out, &o)
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		})
		return nil
	})
	return out, err
}
