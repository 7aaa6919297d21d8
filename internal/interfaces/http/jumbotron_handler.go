package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/usecase"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// JumbotronHandler banners de portada.
type JumbotronHandler struct {
	uc  *usecase.JumbotronUseCase
	log *logger.Logger
}

// NewJumbotronHandler construye el handler.
func NewJumbotronHandler(uc *usecase.JumbotronUseCase, log *logger.Logger) *JumbotronHandler {
	return &JumbotronHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar banners
// @Tags         jumbotron
// @Produce      json
// @Success      200  {array}  dto.JumbotronResponse
// @Router       /api/v1/jumbotron/content [get]
func (h *JumbotronHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear banner
// @Tags         jumbotron
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateJumbotronRequest  true  "image_id, url, priority"
// @Success      201   {object}  dto.JumbotronResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/jumbotron/content [post]
func (h *JumbotronHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateJumbotronRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar banner
// @Tags         jumbotron
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del banner"
// @Param        body  body  dto.UpdateJumbotronRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.JumbotronResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/jumbotron/content/{id} [patch]
func (h *JumbotronHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateJumbotronRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar banner
// @Tags         jumbotron
// @Security     Bearer
// @Param        id   path  string  true  "ID del banner"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/jumbotron/content/{id} [delete]
func (h *JumbotronHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
