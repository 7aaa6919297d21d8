package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// ImageUseCase sube imágenes al asset host y guarda solo su referencia (public id + URL).
type ImageUseCase struct {
	repos  repository.Repos
	assets ports.AssetHost
	cache  ports.ProductCache
	log    *logger.Logger
	now    func() time.Time
}

// NewImageUseCase construye el caso de uso.
func NewImageUseCase(repos repository.Repos, assets ports.AssetHost, cache ports.ProductCache, log *logger.Logger) *ImageUseCase {
	return &ImageUseCase{repos: repos, assets: assets, cache: cache, log: log.Component("images"), now: time.Now}
}

// Upload sube el archivo y registra la imagen como genérica. Si falla el guardado local
// se intenta borrar el recurso remoto recién creado.
func (uc *ImageUseCase) Upload(ctx context.Context, name, filename string, data []byte) (*dto.ImageResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}
	ref, err := uc.assets.Upload(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	img := &entity.Image{
		ID:             uuid.New().String(),
		Name:           name,
		RemotePublicID: ref.PublicID,
		URL:            ref.URL,
		Kind:           entity.ImageKindGeneric,
		CreatedAt:      uc.now(),
	}
	if err := uc.repos.Images.Create(ctx, img); err != nil {
		if delErr := uc.assets.Delete(ctx, ref.PublicID); delErr != nil {
			uc.log.Warn().Err(delErr).Str("public_id", ref.PublicID).Msg("imagen remota huérfana")
		}
		return nil, err
	}
	resp := dto.FromImage(img)
	return &resp, nil
}

// GetByID obtiene una imagen.
func (uc *ImageUseCase) GetByID(ctx context.Context, id string) (*dto.ImageResponse, error) {
	img, err := uc.repos.Images.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromImage(img)
	return &resp, nil
}

// Delete borra la imagen remota y luego la fila. Las imágenes de banners se borran junto con el banner.
func (uc *ImageUseCase) Delete(ctx context.Context, id string) error {
	img, err := uc.repos.Images.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if img.Kind == entity.ImageKindJumbotron {
		return domain.ErrInvalidInput
	}
	if err := uc.assets.Delete(ctx, img.RemotePublicID); err != nil {
		return err
	}
	if err := uc.repos.Images.Delete(ctx, id); err != nil {
		return err
	}
	if img.ProductID != nil {
		if err := uc.cache.Invalidate(ctx, *img.ProductID); err != nil {
			uc.log.Warn().Err(err).Str("product_id", *img.ProductID).Msg("no se pudo invalidar cache de producto")
		}
	}
	return nil
}
