// seed carga los datos iniciales de la tienda: un administrador, un cliente (ambos con
// carrito) y un lote de productos de demostración con precio aleatorio entre 1000 y 2500.
//
// Uso: go run ./cmd/seed [-products N] [-migrate up|down|status] [-steps N]
// Es idempotente para los usuarios; los productos solo se cargan si el catálogo está vacío.
// Con -migrate down o status solo se opera sobre el esquema.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crochet-api/internal/application/auth"
	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/application/usecase"
	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
	infraassets "github.com/jhoicas/crochet-api/internal/infrastructure/assets"
	"github.com/jhoicas/crochet-api/internal/infrastructure/postgres"
	"github.com/jhoicas/crochet-api/pkg/config"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

const batchSize = 100

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	products := flag.Int("products", cfg.Seed.Products, "cantidad de productos de demostración")
	migrate := flag.String("migrate", migrateUp, "migraciones: up|down|status")
	steps := flag.Int("steps", 0, "migraciones a aplicar o revertir (0 = todas en up, 1 en down)")
	flag.Parse()

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed")
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	summary, seed, err := runMigrations(ctx, postgres.NewMigrator(pool), *migrate, *steps)
	if err != nil {
		log.Fatal().Err(err).Str("mode", *migrate).Msg("migraciones")
	}
	log.Info().Str("mode", *migrate).Msg(summary)
	if !seed {
		return
	}
	if cfg.Seed.AdminPassword == "" || cfg.Seed.UserPassword == "" {
		log.Fatal().Msg("SEED_ADMIN_PASSWORD y SEED_USER_PASSWORD son obligatorios")
	}

	repos := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)
	authUC := auth.NewAuthUseCase(txRunner, repos, nil, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	assetHost, err := infraassets.NewCloudinaryHost(cfg.Assets)
	if err != nil {
		log.Fatal().Err(err).Msg("asset host")
	}
	productUC := usecase.NewProductUseCase(
		txRunner, repos, assetHost,
		ports.NopProductCache{}, ports.NopEventPublisher{}, nil, log, cfg.Catalog.MaxPageSize,
	)

	seedUser(ctx, log, authUC, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, "Admin", entity.RoleAdmin)
	seedUser(ctx, log, authUC, cfg.Seed.UserEmail, cfg.Seed.UserPassword, "Cliente", entity.RoleUser)

	n, err := seedProducts(ctx, repos, productUC, *products)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar productos")
	}
	log.Info().Int("products", n).Msg("seed terminado")
}

func seedUser(ctx context.Context, log *logger.Logger, uc *auth.AuthUseCase, email, password, firstName, role string) {
	user, err := uc.CreateUser(ctx, email, password, firstName, "", role)
	switch {
	case err == nil:
		log.Info().Str("user_id", user.ID).Str("email", user.Email).Str("role", role).Msg("usuario creado")
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		log.Info().Str("email", email).Msg("usuario ya existe")
	default:
		log.Fatal().Err(err).Str("email", email).Msg("crear usuario")
	}
}

// seedProducts crea n productos en lotes si el catálogo está vacío y devuelve cuántos creó.
func seedProducts(ctx context.Context, repos repository.Repos, uc *usecase.ProductUseCase, n int) (int, error) {
	_, total, err := repos.Products.Search(ctx, repository.ProductFilter{SortBy: repository.SortByID, Limit: 1})
	if err != nil {
		return 0, err
	}
	if total > 0 {
		return 0, nil
	}

	created := 0
	for created < n {
		batch := make([]dto.CreateProductRequest, 0, min(batchSize, n-created))
		for i := 0; i < cap(batch); i++ {
			num := created + i + 1
			price := decimal.NewFromInt(int64(1000 + rand.IntN(1501)))
			listed := rand.IntN(2) == 1
			batch = append(batch, dto.CreateProductRequest{
				Name:          fmt.Sprintf("Producto %d", num),
				Description:   fmt.Sprintf("Producto de crochet número %d", num),
				Price:         &price,
				ListedForSale: &listed,
			})
		}
		if _, err := uc.SaveAll(ctx, batch); err != nil {
			return created, err
		}
		created += len(batch)
	}
	return created, nil
}
