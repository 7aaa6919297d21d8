package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.PriceRepository   = (*PriceRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s *session
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		row := *product
		row.Prices, row.Images = nil, nil
		st.products[row.ID] = row
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

// LockByID no necesita bloqueo propio: dentro de una tx el almacén ya está serializado.
func (r *ProductRepo) LockByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.products[product.ID]; !ok {
			return domain.ErrNotFound
		}
		row := *product
		row.Prices, row.Images = nil, nil
		st.products[row.ID] = row
		return nil
	})
}

func (r *ProductRepo) Search(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var (
		page  []*entity.Product
		total int
	)
	err := r.s.do(func(st *state) error {
		needle := strings.ToLower(f.NameContains)
		matches := make([]entity.Product, 0, len(st.products))
		for _, p := range st.products {
			if f.ListedOnly && !p.ListedForSale {
				continue
			}
			if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
				continue
			}
			matches = append(matches, p)
		}
		total = len(matches)

		var amounts map[string]decimal.Decimal
		if f.SortBy == repository.SortByPrice {
			amounts = effectiveAmounts(st)
		}
		sort.Slice(matches, func(i, j int) bool {
			return lessProduct(matches[i], matches[j], f, amounts)
		})

		start := min(max(f.Offset, 0), len(matches))
		end := len(matches)
		if f.Limit > 0 {
			end = start + min(f.Limit, len(matches)-start)
		}
		for _, p := range matches[start:end] {
			page = append(page, &p)
		}
		return nil
	})
	return page, total, err
}

// lessProduct ordena según el filtro; los productos sin precio van al final en ambas direcciones.
func lessProduct(a, b entity.Product, f repository.ProductFilter, amounts map[string]decimal.Decimal) bool {
	cmp := 0
	switch f.SortBy {
	case repository.SortByName:
		cmp = strings.Compare(a.Name, b.Name)
	case repository.SortByCreatedAt:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	case repository.SortByPrice:
		pa, okA := amounts[a.ID]
		pb, okB := amounts[b.ID]
		switch {
		case okA && !okB:
			return true
		case !okA && okB:
			return false
		case okA && okB:
			cmp = pa.Cmp(pb)
		}
	}
	if cmp == 0 {
		cmp = strings.Compare(a.ID, b.ID)
	}
	if f.Desc {
		return cmp > 0
	}
	return cmp < 0
}

func effectiveAmounts(st *state) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, pr := range st.prices {
		if pr.Until == nil {
			out[pr.ProductID] = pr.Amount
		}
	}
	return out
}

// PriceRepo libro de precios en memoria.
type PriceRepo struct {
	s *session
}

// Create rechaza un segundo precio vigente igual que el índice único parcial de PostgreSQL.
func (r *PriceRepo) Create(_ context.Context, price *entity.ProductPrice) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.products[price.ProductID]; !ok {
			return domain.ErrNotFound
		}
		if price.Until == nil {
			for _, pr := range st.prices {
				if pr.ProductID == price.ProductID && pr.Until == nil {
					return domain.ErrDuplicate
				}
			}
		}
		st.prices[price.ID] = *price
		return nil
	})
}

func (r *PriceRepo) Expire(_ context.Context, id string, until time.Time) error {
	return r.s.do(func(st *state) error {
		pr, ok := st.prices[id]
		if !ok || pr.Until != nil {
			return domain.ErrNotFound
		}
		pr.Until = &until
		st.prices[id] = pr
		return nil
	})
}

func (r *PriceRepo) ListByProduct(_ context.Context, productID string) ([]entity.ProductPrice, error) {
	var out []entity.ProductPrice
	err := r.s.do(func(st *state) error {
		out = pricesOf(st, productID)
		return nil
	})
	return out, err
}

func (r *PriceRepo) GetEffective(_ context.Context, productID string) (entity.ProductPrice, bool, error) {
	var (
		out   entity.ProductPrice
		found bool
	)
	err := r.s.do(func(st *state) error {
		for _, pr := range st.prices {
			if pr.ProductID == productID && pr.Until == nil {
				out, found = pr, true
				return nil
			}
		}
		return nil
	})
	return out, found, err
}

func (r *PriceRepo) GetEffectiveByProducts(_ context.Context, productIDs []string) (map[string]entity.ProductPrice, error) {
	out := make(map[string]entity.ProductPrice, len(productIDs))
	err := r.s.do(func(st *state) error {
		wanted := make(map[string]bool, len(productIDs))
		for _, id := range productIDs {
			wanted[id] = true
		}
		for _, pr := range st.prices {
			if pr.Until == nil && wanted[pr.ProductID] {
				out[pr.ProductID] = pr
			}
		}
		return nil
	})
	return out, err
}

// pricesOf devuelve el historial con el precio vigente al final.
func pricesOf(st *state, productID string) []entity.ProductPrice {
	var out []entity.ProductPrice
	for _, pr := range st.prices {
		if pr.ProductID == productID {
			out = append(out, pr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ei, ej := out[i].Until == nil, out[j].Until == nil
		if ei != ej {
			return ej
		}
		if !out[i].AsOf.Equal(out[j].AsOf) {
			return out[i].AsOf.Before(out[j].AsOf)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
