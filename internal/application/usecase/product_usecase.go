package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/pricing"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
	"github.com/jhoicas/crochet-api/internal/metrics"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

const defaultPageSize = 20

// PriceChangedEvent payload de product.price_changed.
type PriceChangedEvent struct {
	ProductID string           `json:"product_id"`
	Previous  *decimal.Decimal `json:"previous,omitempty"`
	Amount    decimal.Decimal  `json:"amount"`
	AsOf      time.Time        `json:"as_of"`
}

// ProductUseCase casos de uso del catálogo. Todo cambio de precio pasa por el libro de precios.
type ProductUseCase struct {
	txRunner    ports.TxRunner
	repos       repository.Repos
	assets      ports.AssetHost
	cache       ports.ProductCache
	events      ports.EventPublisher
	metrics     *metrics.StoreMetrics
	log         *logger.Logger
	ledger      pricing.Ledger
	now         func() time.Time
	maxPageSize int
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner ports.TxRunner,
	repos repository.Repos,
	assets ports.AssetHost,
	cache ports.ProductCache,
	events ports.EventPublisher,
	m *metrics.StoreMetrics,
	log *logger.Logger,
	maxPageSize int,
) *ProductUseCase {
	if maxPageSize < 1 {
		maxPageSize = defaultPageSize
	}
	return &ProductUseCase{
		txRunner:    txRunner,
		repos:       repos,
		assets:      assets,
		cache:       cache,
		events:      events,
		metrics:     m,
		log:         log.Component("catalog"),
		ledger:      pricing.NewLedger(time.Now),
		now:         time.Now,
		maxPageSize: maxPageSize,
	}
}

// SaveAll crea un lote de productos en una sola transacción: si uno falla no se guarda ninguno.
func (uc *ProductUseCase) SaveAll(ctx context.Context, in []dto.CreateProductRequest) ([]dto.ProductResponse, error) {
	if len(in) == 0 {
		return nil, domain.ErrInvalidInput
	}

	created := make([]*entity.Product, 0, len(in))
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		created = created[:0]
		for _, req := range in {
			p, err := uc.createOne(ctx, r, req)
			if err != nil {
				return err
			}
			created = append(created, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordProductsSaved(len(created))
	out := make([]dto.ProductResponse, 0, len(created))
	var events []ports.Event
	for _, p := range created {
		if price, ok := pricing.EffectivePrice(p); ok {
			uc.metrics.RecordPriceChange()
			events = append(events, priceChanged(p.ID, nil, price))
		}
		out = append(out, dto.FromProduct(p))
	}
	uc.publish(ctx, events...)
	uc.log.Info().Int("count", len(created)).Msg("productos creados")
	return out, nil
}

func (uc *ProductUseCase) createOne(ctx context.Context, r repository.Repos, req dto.CreateProductRequest) (*entity.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	p := &entity.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.ListedForSale != nil {
		p.ListedForSale = *req.ListedForSale
	}
	change, err := uc.ledger.SetPrice(p, req.Price)
	if err != nil {
		return nil, err
	}
	if err := pricing.ValidateListable(p); err != nil {
		return nil, err
	}

	if err := r.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	if change != nil {
		if err := r.Prices.Create(ctx, &change.Added); err != nil {
			return nil, err
		}
	}
	images, err := attachImages(ctx, r, p.ID, req.ImageIDs)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return p, nil
}

// Update aplica una actualización parcial. Un precio nuevo expira el vigente; ImageIDs reemplaza
// el conjunto de imágenes y las que quedan fuera se eliminan también del asset host.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var (
		updated *entity.Product
		change  *pricing.Change
		removed []entity.Image
	)
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		p, err := loadProduct(ctx, r, id, true)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.ErrInvalidInput
			}
			p.Name = name
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.ListedForSale != nil {
			p.ListedForSale = *in.ListedForSale
		}
		change, err = uc.ledger.SetPrice(p, in.Price)
		if err != nil {
			return err
		}
		if err := pricing.ValidateListable(p); err != nil {
			return err
		}

		p.UpdatedAt = uc.now()
		if err := r.Products.Update(ctx, p); err != nil {
			return err
		}
		if change != nil {
			for _, old := range change.Expired {
				if err := r.Prices.Expire(ctx, old.ID, *old.Until); err != nil {
					return err
				}
			}
			if err := r.Prices.Create(ctx, &change.Added); err != nil {
				return err
			}
		}
		if in.ImageIDs != nil {
			removed, err = replaceImages(ctx, r, p, *in.ImageIDs)
			if err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, img := range removed {
		if err := uc.assets.Delete(ctx, img.RemotePublicID); err != nil {
			uc.log.Warn().Err(err).Str("image_id", img.ID).Msg("no se pudo borrar imagen remota")
		}
	}
	if err := uc.cache.Invalidate(ctx, id); err != nil {
		uc.log.Warn().Err(err).Str("product_id", id).Msg("no se pudo invalidar cache de producto")
	}
	if change != nil {
		uc.metrics.RecordPriceChange()
		var previous *decimal.Decimal
		if len(change.Expired) > 0 {
			amount := change.Expired[len(change.Expired)-1].Amount
			previous = &amount
		}
		uc.publish(ctx, priceChanged(id, previous, change.Added))
	}
	return uc.detail(ctx, updated)
}

// GetByID devuelve el detalle del producto. Los productos no publicados solo los ven administradores.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string, viewerIsAdmin bool) (*dto.ProductResponse, error) {
	cached, ok, err := uc.cache.Get(ctx, id)
	if err != nil {
		uc.log.Warn().Err(err).Str("product_id", id).Msg("lectura de cache falló")
	}
	uc.metrics.RecordCacheLookup(ok)
	if ok {
		if !cached.ListedForSale && !viewerIsAdmin {
			return nil, domain.ErrNotFound
		}
		return cached, nil
	}

	p, err := loadProduct(ctx, uc.repos, id, false)
	if err != nil {
		return nil, err
	}
	resp, err := uc.detail(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Set(ctx, resp); err != nil {
		uc.log.Warn().Err(err).Str("product_id", id).Msg("no se pudo guardar en cache")
	}
	if !resp.ListedForSale && !viewerIsAdmin {
		return nil, domain.ErrNotFound
	}
	return resp, nil
}

// PriceHistory devuelve el libro de precios completo del producto.
func (uc *ProductUseCase) PriceHistory(ctx context.Context, id string) ([]dto.PriceHistoryEntry, error) {
	if _, err := uc.repos.Products.GetByID(ctx, id); err != nil {
		return nil, err
	}
	prices, err := uc.repos.Prices.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceHistoryEntry, 0, len(prices))
	for _, pr := range prices {
		out = append(out, dto.PriceHistoryEntry{Amount: pr.Amount, AsOf: pr.AsOf, Until: pr.Until})
	}
	return out, nil
}

// Search pagina el catálogo. Los no administradores solo ven productos publicados.
func (uc *ProductUseCase) Search(ctx context.Context, in dto.ProductSearchRequest, viewerIsAdmin bool) (*dto.ProductSearchResponse, error) {
	if in.Page < 0 {
		return nil, domain.ErrInvalidInput
	}
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = min(defaultPageSize, uc.maxPageSize)
	}
	pageSize = min(pageSize, uc.maxPageSize)
	// el offset debe caber en un int
	if in.Page > math.MaxInt/pageSize {
		return nil, domain.ErrInvalidInput
	}

	sortBy := strings.ToLower(strings.TrimSpace(in.SortBy))
	switch sortBy {
	case "":
		sortBy = repository.SortByID
	case "createdat":
		sortBy = repository.SortByCreatedAt
	case repository.SortByID, repository.SortByName, repository.SortByCreatedAt, repository.SortByPrice:
	default:
		return nil, domain.ErrInvalidInput
	}
	var desc bool
	switch strings.ToLower(in.SortDirection) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return nil, domain.ErrInvalidInput
	}

	products, total, err := uc.repos.Products.Search(ctx, repository.ProductFilter{
		NameContains: strings.TrimSpace(in.Name),
		ListedOnly:   !viewerIsAdmin,
		SortBy:       sortBy,
		Desc:         desc,
		Limit:        pageSize,
		Offset:       in.Page * pageSize,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	prices, err := uc.repos.Prices.GetEffectiveByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		if price, ok := prices[p.ID]; ok {
			p.Prices = []entity.ProductPrice{price}
		}
		images, err := uc.repos.Images.ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Images = images
		data = append(data, dto.FromProduct(p))
	}

	return &dto.ProductSearchResponse{
		PageIndex:       in.Page,
		PageSize:        pageSize,
		NumberOfResults: total,
		MaxPageIndex:    maxPageIndex(total, pageSize),
		PageData:        data,
	}, nil
}

// maxPageIndex índice de la última página (0 si todo entra en una).
func maxPageIndex(total, pageSize int) int {
	if pageSize <= 0 || total <= pageSize {
		return 0
	}
	if total%pageSize > 0 {
		return total / pageSize
	}
	return total/pageSize - 1
}

// detail agrega los conteos de stock al producto ya cargado.
func (uc *ProductUseCase) detail(ctx context.Context, p *entity.Product) (*dto.ProductResponse, error) {
	available, err := uc.repos.Stock.CountAvailable(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	sold, err := uc.repos.Stock.CountSold(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromProduct(p)
	resp.Available = &available
	resp.Sold = &sold
	return &resp, nil
}

func (uc *ProductUseCase) publish(ctx context.Context, events ...ports.Event) {
	if len(events) == 0 {
		return
	}
	if err := uc.events.Publish(ctx, events...); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo publicar evento")
	}
}

func priceChanged(productID string, previous *decimal.Decimal, price entity.ProductPrice) ports.Event {
	return ports.Event{
		Type:       ports.EventProductPriceChanged,
		Key:        productID,
		Payload:    PriceChangedEvent{ProductID: productID, Previous: previous, Amount: price.Amount, AsOf: price.AsOf},
		OccurredAt: price.AsOf,
	}
}

// loadProduct carga el producto con su historial de precios e imágenes.
// lock = true bloquea la fila del producto (solo dentro de una transacción).
func loadProduct(ctx context.Context, r repository.Repos, id string, lock bool) (*entity.Product, error) {
	var (
		p   *entity.Product
		err error
	)
	if lock {
		p, err = r.Products.LockByID(ctx, id)
	} else {
		p, err = r.Products.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if p.Prices, err = r.Prices.ListByProduct(ctx, id); err != nil {
		return nil, err
	}
	if p.Images, err = r.Images.ListByProduct(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

// attachImages convierte imágenes genéricas en imágenes del producto, con prioridad según el orden recibido.
func attachImages(ctx context.Context, r repository.Repos, productID string, imageIDs []string) ([]entity.Image, error) {
	out := make([]entity.Image, 0, len(imageIDs))
	seen := make(map[string]bool, len(imageIDs))
	for i, imageID := range imageIDs {
		if seen[imageID] {
			return nil, domain.ErrInvalidInput
		}
		seen[imageID] = true

		img, err := r.Images.GetByID(ctx, imageID)
		if err != nil {
			return nil, err
		}
		if img.Kind == entity.ImageKindJumbotron || (img.ProductID != nil && *img.ProductID != productID) {
			return nil, domain.ErrInvalidInput
		}
		pid := productID
		img.Kind = entity.ImageKindProduct
		img.ProductID = &pid
		img.Priority = i
		if err := r.Images.Update(ctx, img); err != nil {
			return nil, err
		}
		out = append(out, *img)
	}
	return out, nil
}

// replaceImages deja en el producto exactamente imageIDs y borra las filas de las que quedan fuera.
// Devuelve las eliminadas para borrarlas del asset host después del commit.
func replaceImages(ctx context.Context, r repository.Repos, p *entity.Product, imageIDs []string) ([]entity.Image, error) {
	keep := make(map[string]bool, len(imageIDs))
	for _, id := range imageIDs {
		keep[id] = true
	}
	var removed []entity.Image
	for _, img := range p.Images {
		if keep[img.ID] {
			continue
		}
		if err := r.Images.Delete(ctx, img.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		removed = append(removed, img)
	}
	images, err := attachImages(ctx, r, p.ID, imageIDs)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return removed, nil
}
