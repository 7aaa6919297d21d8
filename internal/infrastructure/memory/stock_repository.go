package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var _ repository.StockUnitRepository = (*StockUnitRepo)(nil)

// StockUnitRepo unidades de inventario en memoria.
type StockUnitRepo struct {
	s *session
}

func (r *StockUnitRepo) CreateBatch(_ context.Context, units []entity.StockUnit) error {
	return r.s.do(func(st *state) error {
		for _, u := range units {
			if _, ok := st.products[u.ProductID]; !ok {
				return domain.ErrNotFound
			}
			if _, ok := st.units[u.ID]; ok {
				return domain.ErrDuplicate
			}
		}
		for _, u := range units {
			st.units[u.ID] = u
		}
		return nil
	})
}

func (r *StockUnitRepo) CountAvailable(_ context.Context, productID string) (int, error) {
	return r.count(productID, false)
}

func (r *StockUnitRepo) CountSold(_ context.Context, productID string) (int, error) {
	return r.count(productID, true)
}

func (r *StockUnitRepo) count(productID string, sold bool) (int, error) {
	n := 0
	err := r.s.do(func(st *state) error {
		for _, u := range st.units {
			if u.ProductID == productID && u.Sold() == sold {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *StockUnitRepo) List(_ context.Context, f repository.StockFilter) ([]entity.StockUnit, error) {
	var out []entity.StockUnit
	err := r.s.do(func(st *state) error {
		for _, u := range st.units {
			if f.ProductID != nil && u.ProductID != *f.ProductID {
				continue
			}
			if f.Sold != nil && u.Sold() != *f.Sold {
				continue
			}
			out = append(out, u)
		}
		sortUnits(out)
		return nil
	})
	return out, err
}

func (r *StockUnitRepo) PickAvailable(_ context.Context, productID string, n int) ([]entity.StockUnit, error) {
	var out []entity.StockUnit
	err := r.s.do(func(st *state) error {
		for _, u := range st.units {
			if u.ProductID == productID && !u.Sold() {
				out = append(out, u)
			}
		}
		sortUnits(out)
		if len(out) > n {
			out = out[:n]
		}
		return nil
	})
	return out, err
}

func (r *StockUnitRepo) MarkSold(_ context.Context, unitIDs []string, orderID string) error {
	return r.s.do(func(st *state) error {
		for _, id := range unitIDs {
			u, ok := st.units[id]
			if !ok || u.Sold() {
				return domain.ErrNotFound
			}
		}
		for _, id := range unitIDs {
			u := st.units[id]
			oid := orderID
			u.OrderID = &oid
			st.units[id] = u
		}
		return nil
	})
}

func sortUnits(units []entity.StockUnit) {
	sort.Slice(units, func(i, j int) bool {
		if !units[i].CreatedAt.Equal(units[j].CreatedAt) {
			return units[i].CreatedAt.Before(units[j].CreatedAt)
		}
		return units[i].ID < units[j].ID
	})
}
