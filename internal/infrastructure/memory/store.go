// Package memory implementa los repositorios sobre mapas en memoria.
// Sirve como driver de almacenamiento para desarrollo local y como doble de los tests de casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// state contiene todas las tablas. Se clona completo al iniciar una transacción.
type state struct {
	products  map[string]entity.Product // sin Prices ni Images
	prices    map[string]entity.ProductPrice
	images    map[string]entity.Image
	units     map[string]entity.StockUnit
	carts     map[string]entity.Cart
	cartItems map[string]entity.CartItem
	orders    map[string]entity.Order
	users     map[string]entity.User
	jumbotron map[string]entity.JumbotronContent
}

func newState() *state {
	return &state{
		products:  make(map[string]entity.Product),
		prices:    make(map[string]entity.ProductPrice),
		images:    make(map[string]entity.Image),
		units:     make(map[string]entity.StockUnit),
		carts:     make(map[string]entity.Cart),
		cartItems: make(map[string]entity.CartItem),
		orders:    make(map[string]entity.Order),
		users:     make(map[string]entity.User),
		jumbotron: make(map[string]entity.JumbotronContent),
	}
}

// clone copia los mapas. Los punteros de las entidades nunca se mutan en sitio, así que basta la copia superficial.
func (s *state) clone() *state {
	return &state{
		products:  cloneMap(s.products),
		prices:    cloneMap(s.prices),
		images:    cloneMap(s.images),
		units:     cloneMap(s.units),
		carts:     cloneMap(s.carts),
		cartItems: cloneMap(s.cartItems),
		orders:    cloneMap(s.orders),
		users:     cloneMap(s.users),
		jumbotron: cloneMap(s.jumbotron),
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store es la base de datos en memoria. Un único mutex serializa operaciones y transacciones.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// session decide si una operación toma el mutex (fuera de tx) o ya corre bajo él (dentro de tx).
type session struct {
	store *Store
	inTx  bool
}

func (s *session) do(fn func(st *state) error) error {
	if s.inTx {
		return fn(s.store.st)
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return fn(s.store.st)
}

func reposFor(sess *session) repository.Repos {
	return repository.Repos{
		Products:  &ProductRepo{s: sess},
		Prices:    &PriceRepo{s: sess},
		Images:    &ImageRepo{s: sess},
		Stock:     &StockUnitRepo{s: sess},
		Carts:     &CartRepo{s: sess},
		CartItems: &CartItemRepo{s: sess},
		Orders:    &OrderRepo{s: sess},
		Users:     &UserRepo{s: sess},
		Jumbotron: &JumbotronRepo{s: sess},
	}
}

// Repos devuelve repositorios fuera de transacción: cada llamada toma el mutex por separado.
func (s *Store) Repos() repository.Repos {
	return reposFor(&session{store: s})
}

// TxRunner construye el runner transaccional del almacén.
func (s *Store) TxRunner() *TxRunner {
	return &TxRunner{store: s}
}

// TxRunner ejecuta fn con el mutex tomado; si fn falla restaura la foto previa (rollback).
type TxRunner struct {
	store *Store
}

// Run inicia una "transacción": bloquea el almacén, ejecuta fn y hace commit o rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snapshot := r.store.st.clone()
	committed := false
	defer func() {
		if !committed {
			r.store.st = snapshot
		}
	}()

	if err := fn(reposFor(&session{store: r.store, inTx: true})); err != nil {
		return err
	}
	committed = true
	return nil
}
