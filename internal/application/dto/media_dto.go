package dto

import "time"

// ImageResponse imagen alojada en el asset host.
type ImageResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Kind      string    `json:"kind"`
	ProductID *string   `json:"product_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateJumbotronRequest body para POST /jumbotron/content.
type CreateJumbotronRequest struct {
	ImageID  string `json:"image_id"`
	URL      string `json:"url"`
	Priority int    `json:"priority"`
}

// UpdateJumbotronRequest actualización parcial de un banner.
type UpdateJumbotronRequest struct {
	ImageID  *string `json:"image_id"`
	URL      *string `json:"url"`
	Priority *int    `json:"priority"`
}

// JumbotronResponse banner de portada con su imagen.
type JumbotronResponse struct {
	ID       string `json:"id"`
	ImageID  string `json:"image_id"`
	ImageURL string `json:"image_url"`
	URL      string `json:"url"`
	Priority int    `json:"priority"`
}
