package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crochet-api/internal/application/dto"
)

// AdminHome godoc
// @Summary      Saludo del panel de administración
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MessageResponse
// @Router       /api/v1/admin/home [get]
func AdminHome(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "Bienvenido al panel de administración, " + GetEmail(c)})
}
