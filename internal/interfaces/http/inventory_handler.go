package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/inventory"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// InventoryHandler unidades de stock (solo administradores).
type InventoryHandler struct {
	uc  *inventory.StockUseCase
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// UpdateStock godoc
// @Summary      Agregar unidades de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateStockRequest  true  "product_id, quantity"
// @Success      201   {object}  dto.StockSummaryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/update-stock [post]
func (h *InventoryHandler) UpdateStock(c *fiber.Ctx) error {
	var in dto.UpdateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ProductID == "" || in.Quantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y quantity > 0 son requeridos"})
	}
	out, err := h.uc.UpdateStock(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListItems godoc
// @Summary      Listar unidades de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  query  string  false  "ID del producto"
// @Param        sold       query  bool    false  "Filtrar vendidas / disponibles"
// @Success      200  {array}   dto.StockUnitResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/items [get]
func (h *InventoryHandler) ListItems(c *fiber.Ctx) error {
	var in dto.StockItemsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.ListItems(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de stock de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/products/{id}/summary [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
