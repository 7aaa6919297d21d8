package ports

import "context"

// AssetRef identificador estable y URL pública devueltos por el asset host.
type AssetRef struct {
	PublicID string
	URL      string
}

// AssetHost puerto de salida hacia el alojamiento remoto de imágenes.
// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
type AssetHost interface {
	Upload(ctx context.Context, filename string, data []byte) (AssetRef, error)
	Delete(ctx context.Context, publicID string) error
}
