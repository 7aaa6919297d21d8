package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/pkg/config"
)

var _ ports.AssetHost = (*CloudinaryHost)(nil)

var errNotConfigured = errors.New("assets: ASSETS_CLOUD_NAME, ASSETS_API_KEY y ASSETS_API_SECRET son obligatorios")

// CloudinaryHost adaptador del asset host sobre el SDK de Cloudinary.
// El servidor solo guarda el public_id y la URL devuelta.
type CloudinaryHost struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryHost construye el adaptador. Sin credenciales devuelve un host que
// rechaza toda operación, para que el resto de la API funcione igual.
func NewCloudinaryHost(cfg config.AssetsConfig) (*CloudinaryHost, error) {
	h := &CloudinaryHost{folder: cfg.Folder}
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return h, nil
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("assets: configurar cliente: %w", err)
	}
	if cfg.UploadPrefix != "" {
		cld.Upload.Config.API.UploadPrefix = cfg.UploadPrefix
	}
	h.cld = cld
	return h, nil
}

// Upload sube el archivo y devuelve su public_id y URL segura.
func (h *CloudinaryHost) Upload(ctx context.Context, filename string, data []byte) (ports.AssetRef, error) {
	if h.cld == nil {
		return ports.AssetRef{}, errNotConfigured
	}
	res, err := h.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{Folder: h.folder})
	if err != nil {
		return ports.AssetRef{}, fmt.Errorf("assets: subir %s: %w", filename, err)
	}
	if res.Error.Message != "" {
		return ports.AssetRef{}, fmt.Errorf("assets: subir %s: %s", filename, res.Error.Message)
	}
	if res.PublicID == "" {
		return ports.AssetRef{}, fmt.Errorf("assets: respuesta sin public_id")
	}
	ref := ports.AssetRef{PublicID: res.PublicID, URL: res.SecureURL}
	if ref.URL == "" {
		ref.URL = res.URL
	}
	return ref, nil
}

// Delete elimina el recurso remoto. Un recurso inexistente no es error.
func (h *CloudinaryHost) Delete(ctx context.Context, publicID string) error {
	if h.cld == nil {
		return errNotConfigured
	}
	res, err := h.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("assets: destroy %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("assets: destroy %s: %s", publicID, res.Error.Message)
	}
	switch res.Result {
	case "ok", "not found":
		return nil
	default:
		return fmt.Errorf("assets: destroy %s: resultado %q", publicID, res.Result)
	}
}
