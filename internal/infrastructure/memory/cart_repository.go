package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var (
	_ repository.CartRepository     = (*CartRepo)(nil)
	_ repository.CartItemRepository = (*CartItemRepo)(nil)
)

// CartRepo carritos en memoria.
type CartRepo struct {
	s *session
}

func (r *CartRepo) Create(_ context.Context, cart *entity.Cart) error {
	return r.s.do(func(st *state) error {
		for _, c := range st.carts {
			if c.UserID == cart.UserID {
				return domain.ErrDuplicate
			}
		}
		st.carts[cart.ID] = *cart
		return nil
	})
}

func (r *CartRepo) GetByUserID(_ context.Context, userID string) (*entity.Cart, error) {
	var out *entity.Cart
	err := r.s.do(func(st *state) error {
		for _, c := range st.carts {
			if c.UserID == userID {
				out = &c
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

// CartItemRepo líneas de carrito en memoria.
type CartItemRepo struct {
	s *session
}

func (r *CartItemRepo) Create(_ context.Context, item *entity.CartItem) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.carts[item.CartID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.products[item.ProductID]; !ok {
			return domain.ErrNotFound
		}
		st.cartItems[item.ID] = *item
		return nil
	})
}

func (r *CartItemRepo) Update(_ context.Context, item *entity.CartItem) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.cartItems[item.ID]; !ok {
			return domain.ErrNotFound
		}
		st.cartItems[item.ID] = *item
		return nil
	})
}

func (r *CartItemRepo) Delete(_ context.Context, id string) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.cartItems[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.cartItems, id)
		return nil
	})
}

func (r *CartItemRepo) GetByID(_ context.Context, id string) (*entity.CartItem, error) {
	var out *entity.CartItem
	err := r.s.do(func(st *state) error {
		it, ok := st.cartItems[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &it
		return nil
	})
	return out, err
}

func (r *CartItemRepo) ListOpenByCart(_ context.Context, cartID string) ([]entity.CartItem, error) {
	var out []entity.CartItem
	err := r.s.do(func(st *state) error {
		for _, it := range st.cartItems {
			if it.CartID == cartID && it.Open() {
				out = append(out, it)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

func (r *CartItemRepo) FindOpenByCartAndProduct(_ context.Context, cartID, productID string) (*entity.CartItem, error) {
	var out *entity.CartItem
	err := r.s.do(func(st *state) error {
		for _, it := range st.cartItems {
			if it.CartID == cartID && it.ProductID == productID && it.Open() {
				out = &it
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *CartItemRepo) SumOpenQuantityByProduct(_ context.Context, productID string) (int, error) {
	sum := 0
	err := r.s.do(func(st *state) error {
		for _, it := range st.cartItems {
			if it.ProductID == productID && it.Open() {
				sum += it.Quantity
			}
		}
		return nil
	})
	return sum, err
}

func (r *CartItemRepo) AttachOrder(_ context.Context, itemIDs []string, orderID string) error {
	return r.s.do(func(st *state) error {
		for _, id := range itemIDs {
			it, ok := st.cartItems[id]
			if !ok || !it.Open() {
				return domain.ErrNotFound
			}
		}
		for _, id := range itemIDs {
			it := st.cartItems[id]
			oid := orderID
			it.OrderID = &oid
			st.cartItems[id] = it
		}
		return nil
	})
}
