package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// JumbotronUseCase administra los banners de portada.
type JumbotronUseCase struct {
	txRunner ports.TxRunner
	repos    repository.Repos
	assets   ports.AssetHost
	log      *logger.Logger
	now      func() time.Time
}

// NewJumbotronUseCase construye el caso de uso.
func NewJumbotronUseCase(txRunner ports.TxRunner, repos repository.Repos, assets ports.AssetHost, log *logger.Logger) *JumbotronUseCase {
	return &JumbotronUseCase{txRunner: txRunner, repos: repos, assets: assets, log: log.Component("jumbotron"), now: time.Now}
}

// List banners ordenados por prioridad.
func (uc *JumbotronUseCase) List(ctx context.Context) ([]dto.JumbotronResponse, error) {
	contents, err := uc.repos.Jumbotron.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.JumbotronResponse, 0, len(contents))
	for _, c := range contents {
		resp, err := uc.toResponse(ctx, uc.repos, c)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// GetByID obtiene un banner.
func (uc *JumbotronUseCase) GetByID(ctx context.Context, id string) (*dto.JumbotronResponse, error) {
	c, err := uc.repos.Jumbotron.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, uc.repos, c)
}

// Create crea un banner y convierte la imagen genérica en imagen de banner.
func (uc *JumbotronUseCase) Create(ctx context.Context, in dto.CreateJumbotronRequest) (*dto.JumbotronResponse, error) {
	if in.ImageID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	content := &entity.JumbotronContent{
		ID:        uuid.New().String(),
		ImageID:   in.ImageID,
		URL:       in.URL,
		Priority:  in.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var resp *dto.JumbotronResponse
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		if err := claimImage(ctx, r, in.ImageID); err != nil {
			return err
		}
		if err := r.Jumbotron.Create(ctx, content); err != nil {
			return err
		}
		var err error
		resp, err = uc.toResponse(ctx, r, content)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Update aplica una actualización parcial. Reemplazar la imagen elimina la anterior (local y remota).
func (uc *JumbotronUseCase) Update(ctx context.Context, id string, in dto.UpdateJumbotronRequest) (*dto.JumbotronResponse, error) {
	var (
		resp     *dto.JumbotronResponse
		previous *entity.Image
	)
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		c, err := r.Jumbotron.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if in.ImageID != nil && *in.ImageID != c.ImageID {
			if err := claimImage(ctx, r, *in.ImageID); err != nil {
				return err
			}
			if previous, err = r.Images.GetByID(ctx, c.ImageID); err != nil {
				return err
			}
			c.ImageID = *in.ImageID
		}
		if in.URL != nil {
			c.URL = *in.URL
		}
		if in.Priority != nil {
			c.Priority = *in.Priority
		}
		c.UpdatedAt = uc.now()
		if err := r.Jumbotron.Update(ctx, c); err != nil {
			return err
		}
		if previous != nil {
			if err := r.Images.Delete(ctx, previous.ID); err != nil {
				return err
			}
		}
		resp, err = uc.toResponse(ctx, r, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	if previous != nil {
		uc.deleteRemote(ctx, previous)
	}
	return resp, nil
}

// Delete borra el banner y su imagen.
func (uc *JumbotronUseCase) Delete(ctx context.Context, id string) error {
	var img *entity.Image
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		c, err := r.Jumbotron.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if img, err = r.Images.GetByID(ctx, c.ImageID); err != nil {
			return err
		}
		if err := r.Jumbotron.Delete(ctx, id); err != nil {
			return err
		}
		return r.Images.Delete(ctx, img.ID)
	})
	if err != nil {
		return err
	}
	uc.deleteRemote(ctx, img)
	return nil
}

func (uc *JumbotronUseCase) deleteRemote(ctx context.Context, img *entity.Image) {
	if err := uc.assets.Delete(ctx, img.RemotePublicID); err != nil {
		uc.log.Warn().Err(err).Str("image_id", img.ID).Msg("no se pudo borrar imagen remota")
	}
}

func (uc *JumbotronUseCase) toResponse(ctx context.Context, r repository.Repos, c *entity.JumbotronContent) (*dto.JumbotronResponse, error) {
	img, err := r.Images.GetByID(ctx, c.ImageID)
	if err != nil {
		return nil, err
	}
	return &dto.JumbotronResponse{
		ID:       c.ID,
		ImageID:  c.ImageID,
		ImageURL: img.URL,
		URL:      c.URL,
		Priority: c.Priority,
	}, nil
}

// claimImage convierte una imagen genérica en imagen de banner. Solo se aceptan imágenes libres.
func claimImage(ctx context.Context, r repository.Repos, imageID string) error {
	img, err := r.Images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img.Kind != entity.ImageKindGeneric {
		return domain.ErrInvalidInput
	}
	img.Kind = entity.ImageKindJumbotron
	return r.Images.Update(ctx, img)
}
