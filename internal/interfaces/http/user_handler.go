package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crochet-api/internal/application/auth"
	"github.com/jhoicas/crochet-api/internal/application/cart"
	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// UserHandler perfil, carrito y órdenes del usuario autenticado.
type UserHandler struct {
	authUC *auth.AuthUseCase
	cartUC *cart.UseCase
	log    *logger.Logger
}

// NewUserHandler construye el handler.
func NewUserHandler(authUC *auth.AuthUseCase, cartUC *cart.UseCase, log *logger.Logger) *UserHandler {
	return &UserHandler{authUC: authUC, cartUC: cartUC, log: log}
}

// Info godoc
// @Summary      Datos del usuario autenticado
// @Tags         user
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserInfoResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/v1/user/info [get]
func (h *UserHandler) Info(c *fiber.Ctx) error {
	out, err := h.authUC.UserInfo(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Cart godoc
// @Summary      Ver carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CartItemResponse
// @Router       /api/v1/user/cart [get]
func (h *UserHandler) Cart(c *fiber.Ctx) error {
	out, err := h.cartUC.GetItems(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar producto al carrito
// @Description  Si el producto ya está en el carrito se suman las cantidades.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddCartItemRequest  true  "product_id, quantity"
// @Success      200   {object}  dto.CartItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/user/cart/add [post]
func (h *UserHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.cartUC.AddItem(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateItem godoc
// @Summary      Cambiar cantidad de una línea del carrito
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la línea"
// @Param        body  body  dto.UpdateCartItemRequest  true  "quantity"
// @Success      200   {object}  dto.CartItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/user/cart/item/{id} [patch]
func (h *UserHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.cartUC.UpdateQuantity(c.UserContext(), GetUserID(c), c.Params("id"), in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// DeleteItem godoc
// @Summary      Quitar línea del carrito
// @Tags         cart
// @Security     Bearer
// @Param        id   path  string  true  "ID de la línea"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/user/cart/item/{id} [delete]
func (h *UserHandler) DeleteItem(c *fiber.Ctx) error {
	if err := h.cartUC.DeleteItem(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Checkout godoc
// @Summary      Confirmar compra
// @Description  Consume las unidades de stock del carrito y genera la orden.
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/user/cart/checkout [post]
func (h *UserHandler) Checkout(c *fiber.Ctx) error {
	out, err := h.cartUC.Checkout(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Orders godoc
// @Summary      Listar órdenes del usuario
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/v1/user/orders [get]
func (h *UserHandler) Orders(c *fiber.Ctx) error {
	out, err := h.cartUC.ListOrders(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Descargar comprobante de una orden
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/user/orders/{id}/receipt [get]
func (h *UserHandler) Receipt(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := h.cartUC.Receipt(c.UserContext(), GetUserID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="orden-%s.pdf"`, id))
	return c.Send(data)
}
