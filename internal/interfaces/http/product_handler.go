package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/usecase"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// ProductHandler maneja el catálogo. Las lecturas son públicas; las escrituras, de administrador.
type ProductHandler struct {
	uc  *usecase.ProductUseCase
	log *logger.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, log *logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, log: log}
}

// SaveAll godoc
// @Summary      Crear productos (lote)
// @Description  Crea todos los productos o ninguno.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  []dto.CreateProductRequest  true  "Productos"
// @Success      201   {array}   dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/products [post]
func (h *ProductHandler) SaveAll(c *fiber.Ctx) error {
	var in []dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if len(in) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "se requiere al menos un producto"})
	}
	out, err := h.uc.SaveAll(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Description  Actualización parcial. Un precio nuevo cierra el vigente en el libro de precios.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/products/{id} [patch]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Description  Los productos no publicados solo son visibles para administradores.
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"), IsAdmin(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar productos
// @Tags         products
// @Produce      json
// @Param        page            query  int     false  "Página (desde 0)"
// @Param        page_size       query  int     false  "Tamaño de página"
// @Param        name            query  string  false  "Nombre contiene"
// @Param        sort_by         query  string  false  "id | name | created_at | price"
// @Param        sort_direction  query  string  false  "asc | desc"
// @Success      200  {object}  dto.ProductSearchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/products/search [get]
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	var in dto.ProductSearchRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.Search(c.UserContext(), in, IsAdmin(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// PriceHistory godoc
// @Summary      Historial de precios
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}   dto.PriceHistoryEntry
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/products/{id}/prices [get]
func (h *ProductHandler) PriceHistory(c *fiber.Ctx) error {
	out, err := h.uc.PriceHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
