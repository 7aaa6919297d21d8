package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/usecase"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// maxImageBytes tamaño máximo aceptado por archivo.
const maxImageBytes = 10 << 20

// ImageHandler subida y borrado de imágenes (solo administradores).
type ImageHandler struct {
	uc  *usecase.ImageUseCase
	log *logger.Logger
}

// NewImageHandler construye el handler.
func NewImageHandler(uc *usecase.ImageUseCase, log *logger.Logger) *ImageHandler {
	return &ImageHandler{uc: uc, log: log}
}

// Upload godoc
// @Summary      Subir imagen
// @Tags         images
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        name  formData  string  true  "Nombre de la imagen"
// @Param        file  formData  file    true  "Archivo"
// @Success      201   {object}  dto.ImageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/images/upload [post]
func (h *ImageHandler) Upload(c *fiber.Ctx) error {
	name := c.FormValue("name")
	fh, err := c.FormFile("file")
	if err != nil || name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name y file son requeridos"})
	}
	if fh.Size > maxImageBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "el archivo supera 10MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return badBody(c)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return badBody(c)
	}

	out, err := h.uc.Upload(c.UserContext(), name, fh.Filename, data)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener imagen
// @Tags         images
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la imagen"
// @Success      200  {object}  dto.ImageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/images/{id} [get]
func (h *ImageHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar imagen
// @Description  Borra el recurso remoto y luego el registro local.
// @Tags         images
// @Security     Bearer
// @Param        id   path  string  true  "ID de la imagen"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/images/{id} [delete]
func (h *ImageHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
