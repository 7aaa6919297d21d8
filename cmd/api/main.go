package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/text/language"

	_ "github.com/jhoicas/crochet-api/docs"
	"github.com/jhoicas/crochet-api/internal/application/auth"
	"github.com/jhoicas/crochet-api/internal/application/cart"
	"github.com/jhoicas/crochet-api/internal/application/inventory"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/application/usecase"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
	infraassets "github.com/jhoicas/crochet-api/internal/infrastructure/assets"
	infracache "github.com/jhoicas/crochet-api/internal/infrastructure/cache"
	"github.com/jhoicas/crochet-api/internal/infrastructure/memory"
	"github.com/jhoicas/crochet-api/internal/infrastructure/messaging"
	infraoauth "github.com/jhoicas/crochet-api/internal/infrastructure/oauth"
	infrapdf "github.com/jhoicas/crochet-api/internal/infrastructure/pdf"
	"github.com/jhoicas/crochet-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/crochet-api/internal/interfaces/http"
	"github.com/jhoicas/crochet-api/internal/metrics"
	"github.com/jhoicas/crochet-api/pkg/config"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()

	// Persistencia: PostgreSQL o memoria (desarrollo y demos)
	var (
		repos    repository.Repos
		txRunner ports.TxRunner
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		repos, txRunner = store.Repos(), store.TxRunner()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		if cfg.DB.AutoMigrate {
			applied, err := postgres.NewMigrator(pool).Up(ctx, 0)
			if err != nil {
				log.Fatal().Err(err).Msg("aplicar migraciones")
			}
			log.Info().Int("applied", applied).Msg("migraciones al día")
		}
		repos, txRunner = postgres.NewRepos(pool), postgres.NewTxRunner(pool)
	}

	storeMetrics := metrics.NewStoreMetrics()

	// Cache de detalle de productos (opcional)
	var productCache ports.ProductCache = ports.NopProductCache{}
	if cfg.Redis.Addr != "" {
		rdb, err := infracache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, cache deshabilitado")
		} else {
			defer rdb.Close()
			productCache = infracache.NewProductCache(rdb, time.Duration(cfg.Redis.CacheTTLSeconds)*time.Second)
		}
	}

	// Eventos de dominio (opcional)
	var events ports.EventPublisher = ports.NopEventPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		events = publisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos habilitada")
	}

	var google ports.OAuthProvider
	if provider := infraoauth.NewGoogleProvider(cfg.Google); provider != nil {
		google = provider
	}

	assetHost, err := infraassets.NewCloudinaryHost(cfg.Assets)
	if err != nil {
		log.Fatal().Err(err).Msg("asset host")
	}
	receipts := infrapdf.NewReceiptGenerator(cfg.App.Name, language.LatinAmericanSpanish)

	authUC := auth.NewAuthUseCase(txRunner, repos, google, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	productUC := usecase.NewProductUseCase(txRunner, repos, assetHost, productCache, events, storeMetrics, log, cfg.Catalog.MaxPageSize)
	imageUC := usecase.NewImageUseCase(repos, assetHost, productCache, log)
	jumbotronUC := usecase.NewJumbotronUseCase(txRunner, repos, assetHost, log)
	stockUC := inventory.NewStockUseCase(txRunner, repos, productCache, events, storeMetrics, log)
	cartUC := cart.NewUseCase(txRunner, repos, productCache, events, receipts, storeMetrics, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    12 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.AllowOrigins,
		AllowCredentials: true,
	}))
	app.Use(httpRouter.RequestLogger(log.Component("http"), storeMetrics))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Crochet Store API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		ProductUC:    productUC,
		ImageUC:      imageUC,
		JumbotronUC:  jumbotronUC,
		StockUC:      stockUC,
		CartUC:       cartUC,
		Log:          log,
		JWTSecret:    cfg.JWT.Secret,
		TokenTTL:     time.Duration(cfg.JWT.Expiration) * time.Minute,
		CookieSecure: cfg.HTTP.CookieSecure,
		ServiceName:  cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
