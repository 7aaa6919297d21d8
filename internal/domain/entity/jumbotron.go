package entity

import "time"

// JumbotronContent es un banner promocional de la portada.
type JumbotronContent struct {
	ID        string
	ImageID   string
	URL       string // destino al hacer clic
	Priority  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
