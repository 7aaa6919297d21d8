package entity

import "time"

// Tipos de imagen. Una imagen subida nace como genérica y se convierte al asociarla.
const (
	ImageKindGeneric   = "generic"
	ImageKindProduct   = "product"
	ImageKindJumbotron = "jumbotron"
)

// Image referencia un recurso alojado en el asset host remoto.
// Solo se guarda el par (RemotePublicID, URL); los bytes nunca se persisten.
type Image struct {
	ID             string
	Name           string
	RemotePublicID string
	URL            string
	Kind           string
	ProductID      *string // solo ImageKindProduct
	Priority       int     // orden dentro del producto
	CreatedAt      time.Time
}
