package dto

import (
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/pricing"
)

// FromProduct arma la respuesta pública de un producto. Price queda nil si no hay precio vigente.
func FromProduct(p *entity.Product) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		ListedForSale: p.ListedForSale,
		Images:        make([]ProductImageResponse, 0, len(p.Images)),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if price, ok := pricing.EffectivePrice(p); ok {
		amount := price.Amount
		resp.Price = &amount
	}
	for _, img := range p.Images {
		resp.Images = append(resp.Images, ProductImageResponse{ID: img.ID, URL: img.URL, Priority: img.Priority})
	}
	return resp
}

// FromImage respuesta de una imagen.
func FromImage(img *entity.Image) ImageResponse {
	return ImageResponse{
		ID:        img.ID,
		Name:      img.Name,
		URL:       img.URL,
		Kind:      img.Kind,
		ProductID: img.ProductID,
		CreatedAt: img.CreatedAt,
	}
}

// FromOrder respuesta de una orden con sus líneas.
func FromOrder(o *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		Total:     o.Total,
		Lines:     make([]OrderLineResponse, 0, len(o.Lines)),
		CreatedAt: o.CreatedAt,
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		})
	}
	return resp
}

// FromStockUnit respuesta de una unidad de inventario.
func FromStockUnit(u entity.StockUnit) StockUnitResponse {
	return StockUnitResponse{
		ID:        u.ID,
		ProductID: u.ProductID,
		OrderID:   u.OrderID,
		Sold:      u.Sold(),
		CreatedAt: u.CreatedAt,
	}
}

// FromUser datos públicos del usuario.
func FromUser(u *entity.User) UserInfoResponse {
	return UserInfoResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		PictureURL: u.PictureURL,
	}
}
