package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/crochet-api/internal/application/auth"
	"github.com/jhoicas/crochet-api/internal/application/cart"
	"github.com/jhoicas/crochet-api/internal/application/inventory"
	"github.com/jhoicas/crochet-api/internal/application/usecase"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	ProductUC    *usecase.ProductUseCase
	ImageUC      *usecase.ImageUseCase
	JumbotronUC  *usecase.JumbotronUseCase
	StockUC      *inventory.StockUseCase
	CartUC       *cart.UseCase
	Log          *logger.Logger
	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool
	ServiceName  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	requireAuth := AuthMiddleware(deps.JWTSecret)
	adminOnly := RequireRole(entity.RoleAdmin)
	anyUser := RequireRole(entity.RoleUser, entity.RoleAdmin)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.TokenTTL, deps.CookieSecure, log.Component("auth"))
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/signin", authHandler.Signin)
	authGroup.Post("/signin-google", authHandler.SigninGoogle)
	authGroup.Post("/signout", authHandler.Signout)

	// Catálogo: lecturas con auth opcional (los admin ven productos no publicados)
	productHandler := NewProductHandler(deps.ProductUC, log.Component("products"))
	products := api.Group("/products")
	products.Get("/search", OptionalAuth(deps.JWTSecret), productHandler.Search)
	products.Get("/:id", OptionalAuth(deps.JWTSecret), productHandler.GetByID)
	products.Post("/", requireAuth, adminOnly, productHandler.SaveAll)
	products.Patch("/:id", requireAuth, adminOnly, productHandler.Update)
	products.Get("/:id/prices", requireAuth, adminOnly, productHandler.PriceHistory)

	// Imágenes (admin)
	imageHandler := NewImageHandler(deps.ImageUC, log.Component("images"))
	images := api.Group("/images", requireAuth, adminOnly)
	images.Post("/upload", imageHandler.Upload)
	images.Get("/:id", imageHandler.GetByID)
	images.Delete("/:id", imageHandler.Delete)

	// Inventario (admin)
	inventoryHandler := NewInventoryHandler(deps.StockUC, log.Component("inventory"))
	inv := api.Group("/inventory", requireAuth, adminOnly)
	inv.Post("/update-stock", inventoryHandler.UpdateStock)
	inv.Get("/items", inventoryHandler.ListItems)
	inv.Get("/products/:id/summary", inventoryHandler.Summary)

	// Jumbotron: lectura pública, escritura admin
	jumbotronHandler := NewJumbotronHandler(deps.JumbotronUC, log.Component("jumbotron"))
	jumbotron := api.Group("/jumbotron/content")
	jumbotron.Get("/", jumbotronHandler.List)
	jumbotron.Post("/", requireAuth, adminOnly, jumbotronHandler.Create)
	jumbotron.Patch("/:id", requireAuth, adminOnly, jumbotronHandler.Update)
	jumbotron.Delete("/:id", requireAuth, adminOnly, jumbotronHandler.Delete)

	// Usuario autenticado: perfil, carrito y órdenes
	userHandler := NewUserHandler(deps.AuthUC, deps.CartUC, log.Component("user"))
	user := api.Group("/user", requireAuth, anyUser)
	user.Get("/info", userHandler.Info)
	user.Get("/cart", userHandler.Cart)
	user.Post("/cart/add", userHandler.AddItem)
	user.Patch("/cart/item/:id", userHandler.UpdateItem)
	user.Delete("/cart/item/:id", userHandler.DeleteItem)
	user.Post("/cart/checkout", userHandler.Checkout)
	user.Get("/orders", userHandler.Orders)
	user.Get("/orders/:id/receipt", userHandler.Receipt)

	api.Get("/admin/home", requireAuth, adminOnly, AdminHome)
}
