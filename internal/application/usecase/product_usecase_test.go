package usecase_test

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/application/usecase"
	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
	"github.com/jhoicas/crochet-api/internal/infrastructure/memory"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

type catalogFixture struct {
	repos  repository.Repos
	uc     *usecase.ProductUseCase
	images *usecase.ImageUseCase
	assets *fakeAssets
	cache  *mapCache
	events *recordingPublisher
}

func newCatalogFixture(t *testing.T, maxPageSize int) *catalogFixture {
	t.Helper()
	store := memory.NewStore()
	f := &catalogFixture{
		repos:  store.Repos(),
		assets: &fakeAssets{},
		cache:  newMapCache(),
		events: &recordingPublisher{},
	}
	f.uc = usecase.NewProductUseCase(store.TxRunner(), f.repos, f.assets, f.cache, f.events, nil, logger.Nop(), maxPageSize)
	f.images = usecase.NewImageUseCase(f.repos, f.assets, f.cache, logger.Nop())
	return f
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func listed(v bool) *bool { return &v }

func (f *catalogFixture) create(t *testing.T, req dto.CreateProductRequest) dto.ProductResponse {
	t.Helper()
	out, err := f.uc.SaveAll(context.Background(), []dto.CreateProductRequest{req})
	require.NoError(t, err)
	require.Len(t, out, 1)
	return out[0]
}

// ──────────────────────────────────────────────────────────────────────────────
// SaveAll
// ──────────────────────────────────────────────────────────────────────────────

func TestSaveAll_CreaProductosConPrecio(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()

	out, err := f.uc.SaveAll(ctx, []dto.CreateProductRequest{
		{Name: "Gorro de lana", Price: price("35.00"), ListedForSale: listed(true)},
		{Name: "Borrador sin precio"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].Price)
	assert.True(t, out[0].Price.Equal(decimal.RequireFromString("35")))
	assert.True(t, out[0].ListedForSale)
	assert.Nil(t, out[1].Price)
	assert.False(t, out[1].ListedForSale)

	assert.Equal(t, []string{ports.EventProductPriceChanged}, f.events.types())
}

func TestSaveAll_LoteEsAtomico(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()

	_, err := f.uc.SaveAll(ctx, []dto.CreateProductRequest{
		{Name: "Bufanda", Price: price("20.00"), ListedForSale: listed(true)},
		{Name: "Publicado sin precio", ListedForSale: listed(true)},
	})
	assert.ErrorIs(t, err, domain.ErrNotListable)

	_, total, err := f.repos.Products.Search(ctx, repository.ProductFilter{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total, "ningún producto del lote debe persistir")
	assert.Empty(t, f.events.types())
}

func TestSaveAll_PrecioBajoElMinimo(t *testing.T) {
	f := newCatalogFixture(t, 50)
	_, err := f.uc.SaveAll(context.Background(), []dto.CreateProductRequest{{Name: "Llavero", Price: price("0.001")}})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestSaveAll_Validaciones(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()

	_, err := f.uc.SaveAll(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.SaveAll(ctx, []dto.CreateProductRequest{{Name: "   "}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.SaveAll(ctx, []dto.CreateProductRequest{{Name: "Con imagen fantasma", ImageIDs: []string{"no-existe"}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_PrecioNuevoExpiraElVigente(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()
	p := f.create(t, dto.CreateProductRequest{Name: "Amigurumi", Price: price("100"), ListedForSale: listed(true)})

	updated, err := f.uc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: price("150")})
	require.NoError(t, err)
	require.NotNil(t, updated.Price)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(150)))

	history, err := f.uc.PriceHistory(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Amount.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, history[0].Until, "el precio anterior queda expirado")
	assert.Nil(t, history[1].Until, "el vigente va último")

	types := f.events.types()
	require.Len(t, types, 2)
	last := f.events.events[1].Payload.(usecase.PriceChangedEvent)
	require.NotNil(t, last.Previous)
	assert.True(t, last.Previous.Equal(decimal.NewFromInt(100)))
}

func TestUpdate_PublicarSinPrecioFalla(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()
	p := f.create(t, dto.CreateProductRequest{Name: "Mantita"})

	_, err := f.uc.Update(ctx, p.ID, dto.UpdateProductRequest{ListedForSale: listed(true)})
	assert.ErrorIs(t, err, domain.ErrNotListable)

	stored, err := f.repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, stored.ListedForSale)
}

func TestUpdate_CamposParciales(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()
	p := f.create(t, dto.CreateProductRequest{Name: "Bolso", Description: "tejido a mano", Price: price("60")})

	name := "Bolso playero"
	updated, err := f.uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bolso playero", updated.Name)
	assert.Equal(t, "tejido a mano", updated.Description)
	require.NotNil(t, updated.Price)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(60)))

	history, _ := f.uc.PriceHistory(ctx, p.ID)
	assert.Len(t, history, 1, "sin precio en la actualización el libro no cambia")
}

func TestUpdate_ProductoInexistente(t *testing.T) {
	f := newCatalogFixture(t, 50)
	_, err := f.uc.Update(context.Background(), "no-existe", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_ReemplazaImagenes(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()
	a, err := f.images.Upload(ctx, "frente", "a.jpg", []byte("a"))
	require.NoError(t, err)
	b, err := f.images.Upload(ctx, "espalda", "b.jpg", []byte("b"))
	require.NoError(t, err)

	p := f.create(t, dto.CreateProductRequest{Name: "Chaleco", ImageIDs: []string{a.ID, b.ID}})
	require.Len(t, p.Images, 2)
	assert.Equal(t, a.ID, p.Images[0].ID)

	ids := []string{b.ID}
	updated, err := f.uc.Update(ctx, p.ID, dto.UpdateProductRequest{ImageIDs: &ids})
	require.NoError(t, err)
	require.Len(t, updated.Images, 1)
	assert.Equal(t, b.ID, updated.Images[0].ID)
	assert.Equal(t, 0, updated.Images[0].Priority)

	_, err = f.repos.Images.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, f.assets.deleted, f.assets.uploaded[0])
}

func TestSaveAll_ImagenDeOtroProducto(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()
	img, err := f.images.Upload(ctx, "foto", "x.jpg", []byte("x"))
	require.NoError(t, err)
	f.create(t, dto.CreateProductRequest{Name: "Primero", ImageIDs: []string{img.ID}})

	_, err = f.uc.SaveAll(ctx, []dto.CreateProductRequest{{Name: "Segundo", ImageIDs: []string{img.ID}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetByID / cache
// ──────────────────────────────────────────────────────────────────────────────

func TestGetByID_NoPublicadoSoloAdmin(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()
	p := f.create(t, dto.CreateProductRequest{Name: "Prototipo"})

	_, err := f.uc.GetByID(ctx, p.ID, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.uc.GetByID(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Prototipo", got.Name)

	// ya cacheado: la regla de visibilidad se aplica igual
	_, err = f.uc.GetByID(ctx, p.ID, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByID_IncluyeConteosDeStock(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()
	p := f.create(t, dto.CreateProductRequest{Name: "Gorro", Price: price("10"), ListedForSale: listed(true)})
	require.NoError(t, f.repos.Stock.CreateBatch(ctx, []entity.StockUnit{
		{ID: "u1", ProductID: p.ID}, {ID: "u2", ProductID: p.ID},
	}))

	got, err := f.uc.GetByID(ctx, p.ID, false)
	require.NoError(t, err)
	require.NotNil(t, got.Available)
	require.NotNil(t, got.Sold)
	assert.Equal(t, 2, *got.Available)
	assert.Equal(t, 0, *got.Sold)
}

func TestUpdate_InvalidaCache(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()
	p := f.create(t, dto.CreateProductRequest{Name: "Gorro", Price: price("10"), ListedForSale: listed(true)})

	_, err := f.uc.GetByID(ctx, p.ID, false)
	require.NoError(t, err)
	_, ok, _ := f.cache.Get(ctx, p.ID)
	require.True(t, ok)

	_, err = f.uc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: price("12")})
	require.NoError(t, err)
	_, ok, _ = f.cache.Get(ctx, p.ID)
	assert.False(t, ok)

	got, err := f.uc.GetByID(ctx, p.ID, false)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(12)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Search
// ──────────────────────────────────────────────────────────────────────────────

func seedCatalog(t *testing.T, f *catalogFixture) {
	t.Helper()
	_, err := f.uc.SaveAll(context.Background(), []dto.CreateProductRequest{
		{Name: "Gorro rojo", Price: price("30"), ListedForSale: listed(true)},
		{Name: "Gorro azul", Price: price("10"), ListedForSale: listed(true)},
		{Name: "Bufanda", Price: price("20"), ListedForSale: listed(true)},
		{Name: "Guantes", Price: price("15"), ListedForSale: listed(true)},
		{Name: "Gorro oculto", Price: price("5")},
	})
	require.NoError(t, err)
}

func TestSearch_SoloPublicadosParaClientes(t *testing.T) {
	f := newCatalogFixture(t, 50)
	seedCatalog(t, f)
	ctx := context.Background()

	res, err := f.uc.Search(ctx, dto.ProductSearchRequest{Name: "gorro"}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.NumberOfResults)

	res, err = f.uc.Search(ctx, dto.ProductSearchRequest{Name: "gorro"}, true)
	require.NoError(t, err)
	assert.Equal(t, 3, res.NumberOfResults)
}

func TestSearch_OrdenPorPrecioYPaginacion(t *testing.T) {
	f := newCatalogFixture(t, 50)
	seedCatalog(t, f)
	ctx := context.Background()

	res, err := f.uc.Search(ctx, dto.ProductSearchRequest{SortBy: "price", PageSize: 3}, false)
	require.NoError(t, err)
	assert.Equal(t, 4, res.NumberOfResults)
	assert.Equal(t, 1, res.MaxPageIndex)
	require.Len(t, res.PageData, 3)
	assert.Equal(t, "Gorro azul", res.PageData[0].Name)
	assert.Equal(t, "Guantes", res.PageData[1].Name)
	assert.Equal(t, "Bufanda", res.PageData[2].Name)

	res, err = f.uc.Search(ctx, dto.ProductSearchRequest{SortBy: "price", SortDirection: "desc", PageSize: 3, Page: 1}, false)
	require.NoError(t, err)
	require.Len(t, res.PageData, 1)
	assert.Equal(t, "Gorro azul", res.PageData[0].Name)
}

func TestSearch_TamanoDePaginaAcotado(t *testing.T) {
	f := newCatalogFixture(t, 2)
	seedCatalog(t, f)

	res, err := f.uc.Search(context.Background(), dto.ProductSearchRequest{PageSize: 100}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageSize)
	assert.Len(t, res.PageData, 2)
	assert.Equal(t, 1, res.MaxPageIndex)
}

func TestSearch_ParametrosInvalidos(t *testing.T) {
	f := newCatalogFixture(t, 50)
	ctx := context.Background()
	cases := []dto.ProductSearchRequest{
		{SortBy: "stock"},
		{SortDirection: "sideways"},
		{Page: -1},
		{Page: math.MaxInt/20 + 1, PageSize: 20},
		{Page: math.MaxInt},
	}
	for _, in := range cases {
		_, err := f.uc.Search(ctx, in, false)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}
}
