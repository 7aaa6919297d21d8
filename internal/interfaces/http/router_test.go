package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crochet-api/internal/application/auth"
	"github.com/jhoicas/crochet-api/internal/application/cart"
	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/inventory"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/application/usecase"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/crochet-api/internal/interfaces/http"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeAssets struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeAssets) Upload(_ context.Context, _ string, _ []byte) (ports.AssetRef, error) {
	id := uuid.NewString()
	return ports.AssetRef{PublicID: id, URL: "https://cdn.test/" + id}, nil
}

func (f *fakeAssets) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

type fakeReceipts struct{}

func (fakeReceipts) GenerateReceipt(_ context.Context, order *entity.Order, _ *entity.User) ([]byte, error) {
	return []byte("%PDF-" + order.ID), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación completa sobre el driver en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testServer struct {
	app        *fiber.App
	adminToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	tx := store.TxRunner()
	log := logger.Nop()
	assets := &fakeAssets{}
	cache := ports.NopProductCache{}
	events := ports.NopEventPublisher{}

	authUC := auth.NewAuthUseCase(tx, repos, nil, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log)
	app := fiber.New()
	app.Use(apphttp.RequestLogger(log, nil))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   usecase.NewProductUseCase(tx, repos, assets, cache, events, nil, log, 50),
		ImageUC:     usecase.NewImageUseCase(repos, assets, cache, log),
		JumbotronUC: usecase.NewJumbotronUseCase(tx, repos, assets, log),
		StockUC:     inventory.NewStockUseCase(tx, repos, cache, events, nil, log),
		CartUC:      cart.NewUseCase(tx, repos, cache, events, fakeReceipts{}, nil, log),
		Log:         log,
		JWTSecret:   testJWTSecret,
		TokenTTL:    time.Hour,
		ServiceName: "crochet-api-test",
	})

	_, err := authUC.CreateUser(context.Background(), "admin@crochet.test", "admin-password", "Admin", "", entity.RoleAdmin)
	require.NoError(t, err)
	out, err := authUC.Signin(context.Background(), dto.SigninRequest{Email: "admin@crochet.test", Password: "admin-password"})
	require.NoError(t, err)
	return &testServer{app: app, adminToken: out.Token}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	resp, data := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", dto.SignupRequest{
		FirstName: "Ana", LastName: "Ruiz", Email: email, Password: "password-123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var out dto.AuthResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out.Token
}

// createProduct crea un producto publicado con precio y stock, devuelve su id.
func (s *testServer) createProduct(t *testing.T, name, price string, units int) string {
	t.Helper()
	amount := decimal.RequireFromString(price)
	listed := true
	resp, data := s.do(t, http.MethodPost, "/api/v1/products", s.adminToken, []dto.CreateProductRequest{
		{Name: name, Price: &amount, ListedForSale: &listed},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var out []dto.ProductResponse
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 1)

	if units > 0 {
		resp, data = s.do(t, http.MethodPost, "/api/v1/inventory/update-stock", s.adminToken, dto.UpdateStockRequest{ProductID: out[0].ID, Quantity: units})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	}
	return out[0].ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_HealthYMetrics(t *testing.T) {
	s := newTestServer(t)

	resp, data := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "crochet-api-test")
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))

	resp, _ = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_SignupCookieYSignout(t *testing.T) {
	s := newTestServer(t)

	resp, data := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", dto.SignupRequest{
		FirstName: "Ana", Email: "Ana@Example.com", Password: "password-123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == apphttp.CookieAccessToken {
			token = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, token, "signup debe dejar la cookie accessToken")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/info", nil)
	req.AddCookie(&http.Cookie{Name: apphttp.CookieAccessToken, Value: token})
	infoResp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer infoResp.Body.Close()
	require.Equal(t, http.StatusOK, infoResp.StatusCode)
	var info dto.UserInfoResponse
	require.NoError(t, json.NewDecoder(infoResp.Body).Decode(&info))
	assert.Equal(t, "ana@example.com", info.Email)
	assert.Equal(t, entity.RoleUser, info.Role)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/auth/signout", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == apphttp.CookieAccessToken {
			assert.Empty(t, c.Value)
		}
	}

	resp, _ = s.do(t, http.MethodPost, "/api/v1/auth/signup", "", dto.SignupRequest{
		FirstName: "Ana", Email: "ana@example.com", Password: "password-123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRouter_SigninCredencialesInvalidas(t *testing.T) {
	s := newTestServer(t)
	resp, data := s.do(t, http.MethodPost, "/api/v1/auth/signin", "", dto.SigninRequest{Email: "admin@crochet.test", Password: "mala"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(data), "UNAUTHORIZED")
}

func TestRouter_SigninGoogleSinProveedor(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodPost, "/api/v1/auth/signin-google", "", dto.GoogleSigninRequest{GrantCode: "abc"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_RutasAdminProtegidas(t *testing.T) {
	s := newTestServer(t)
	userToken := s.signup(t, "cliente@example.com")

	resp, _ := s.do(t, http.MethodPost, "/api/v1/products", userToken, []dto.CreateProductRequest{{Name: "x"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/admin/home", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, data := s.do(t, http.MethodGet, "/api/v1/admin/home", s.adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "admin@crochet.test")
}

func TestRouter_CatalogoVisibilidad(t *testing.T) {
	s := newTestServer(t)
	listedID := s.createProduct(t, "Gorro", "25.50", 0)

	hidden := false
	resp, data := s.do(t, http.MethodPost, "/api/v1/products", s.adminToken, []dto.CreateProductRequest{
		{Name: "Borrador", ListedForSale: &hidden},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var created []dto.ProductResponse
	require.NoError(t, json.Unmarshal(data, &created))
	hiddenID := created[0].ID

	resp, _ = s.do(t, http.MethodGet, "/api/v1/products/"+hiddenID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/v1/products/"+hiddenID, s.adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data = s.do(t, http.MethodGet, "/api/v1/products/search?page=0&page_size=10&sort_by=name", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var page dto.ProductSearchResponse
	require.NoError(t, json.Unmarshal(data, &page))
	require.Equal(t, 1, page.NumberOfResults)
	assert.Equal(t, listedID, page.PageData[0].ID)

	resp, data = s.do(t, http.MethodGet, "/api/v1/products/search", s.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Equal(t, 2, page.NumberOfResults)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/products/search?sort_by=color", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_PrecioInvalidoYPublicarSinPrecio(t *testing.T) {
	s := newTestServer(t)

	zero := decimal.Zero
	resp, data := s.do(t, http.MethodPost, "/api/v1/products", s.adminToken, []dto.CreateProductRequest{{Name: "Gratis", Price: &zero}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "INVALID_AMOUNT")

	for _, raw := range []string{"10.005", "100000000000"} {
		bad := decimal.RequireFromString(raw)
		resp, data = s.do(t, http.MethodPost, "/api/v1/products", s.adminToken, []dto.CreateProductRequest{{Name: "Gorro", Price: &bad}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, raw)
		assert.Contains(t, string(data), "INVALID_AMOUNT")
	}

	listed := true
	resp, data = s.do(t, http.MethodPost, "/api/v1/products", s.adminToken, []dto.CreateProductRequest{{Name: "Sin precio", ListedForSale: &listed}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "NOT_LISTABLE")
}

func TestRouter_ActualizarPrecioEHistorial(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct(t, "Bufanda", "40.00", 0)

	price := decimal.RequireFromString("45.00")
	resp, data := s.do(t, http.MethodPatch, "/api/v1/products/"+id, s.adminToken, dto.UpdateProductRequest{Price: &price})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var updated dto.ProductResponse
	require.NoError(t, json.Unmarshal(data, &updated))
	require.NotNil(t, updated.Price)
	assert.True(t, updated.Price.Equal(price))

	resp, data = s.do(t, http.MethodGet, "/api/v1/products/"+id+"/prices", s.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []dto.PriceHistoryEntry
	require.NoError(t, json.Unmarshal(data, &history))
	require.Len(t, history, 2)
	assert.NotNil(t, history[0].Until)
	assert.Nil(t, history[1].Until)
}

func TestRouter_CarritoCheckoutYComprobante(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, "Gorro", "25.50", 3)
	token := s.signup(t, "compradora@example.com")

	resp, data := s.do(t, http.MethodPost, "/api/v1/user/cart/add", token, dto.AddCartItemRequest{ProductID: productID, Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var item dto.CartItemResponse
	require.NoError(t, json.Unmarshal(data, &item))
	assert.Equal(t, 2, item.Quantity)

	resp, data = s.do(t, http.MethodPost, "/api/v1/user/cart/add", token, dto.AddCartItemRequest{ProductID: productID, Quantity: 2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "INSUFFICIENT_STOCK")

	resp, data = s.do(t, http.MethodGet, "/api/v1/user/cart", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []dto.CartItemResponse
	require.NoError(t, json.Unmarshal(data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	resp, data = s.do(t, http.MethodPost, "/api/v1/user/cart/checkout", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(data, &order))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("51.00")), order.Total.String())

	resp, data = s.do(t, http.MethodGet, "/api/v1/inventory/products/"+productID+"/summary", s.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary dto.StockSummaryResponse
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 1, summary.Available)
	assert.Equal(t, 2, summary.Sold)

	resp, data = s.do(t, http.MethodGet, "/api/v1/user/orders", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []dto.OrderResponse
	require.NoError(t, json.Unmarshal(data, &orders))
	require.Len(t, orders, 1)

	resp, data = s.do(t, http.MethodGet, "/api/v1/user/orders/"+order.ID+"/receipt", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	otherToken := s.signup(t, "otra@example.com")
	resp, _ = s.do(t, http.MethodGet, "/api/v1/user/orders/"+order.ID+"/receipt", otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/user/cart/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "carrito vacío")
}

func TestRouter_ActualizarYBorrarLineaDelCarrito(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, "Manta", "90.00", 2)
	token := s.signup(t, "cliente@example.com")

	_, data := s.do(t, http.MethodPost, "/api/v1/user/cart/add", token, dto.AddCartItemRequest{ProductID: productID, Quantity: 1})
	var item dto.CartItemResponse
	require.NoError(t, json.Unmarshal(data, &item))

	resp, _ := s.do(t, http.MethodPatch, "/api/v1/user/cart/item/"+item.ID, token, dto.UpdateCartItemRequest{Quantity: 5})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = s.do(t, http.MethodPatch, "/api/v1/user/cart/item/"+item.ID, token, dto.UpdateCartItemRequest{Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/user/cart/item/"+item.ID, s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "la línea pertenece a otro usuario")

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/user/cart/item/"+item.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRouter_InventarioItems(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, "Gorro", "25.50", 3)

	resp, data := s.do(t, http.MethodGet, "/api/v1/inventory/items?productId="+productID+"&sold=false", s.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var units []dto.StockUnitResponse
	require.NoError(t, json.Unmarshal(data, &units))
	assert.Len(t, units, 3)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/inventory/update-stock", s.adminToken, dto.UpdateStockRequest{ProductID: productID, Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_ImagenesYJumbotron(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("name", "portada"))
	part, err := w.CreateFormFile("file", "portada.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.adminToken)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var img dto.ImageResponse
	require.NoError(t, json.Unmarshal(data, &img))
	assert.Contains(t, img.URL, "https://cdn.test/")

	resp, data = s.do(t, http.MethodPost, "/api/v1/jumbotron/content", s.adminToken, dto.CreateJumbotronRequest{ImageID: img.ID, URL: "/ofertas", Priority: 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var banner dto.JumbotronResponse
	require.NoError(t, json.Unmarshal(data, &banner))

	resp, data = s.do(t, http.MethodGet, "/api/v1/jumbotron/content", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var banners []dto.JumbotronResponse
	require.NoError(t, json.Unmarshal(data, &banners))
	require.Len(t, banners, 1)
	assert.Equal(t, img.URL, banners[0].ImageURL)

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/jumbotron/content/"+banner.ID, s.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/images/"+img.ID, s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "borrar el banner borra su imagen")
}
