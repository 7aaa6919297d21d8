package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/crochet-api/internal/metrics"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// HeaderRequestID header de correlación devuelto en cada respuesta.
const HeaderRequestID = "X-Request-ID"

// RequestLogger registra cada petición con método, ruta, status y duración, y
// alimenta las métricas HTTP. La etiqueta de ruta es el patrón registrado, nunca el path crudo.
func RequestLogger(log *logger.Logger, m *metrics.StoreMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(HeaderRequestID, reqID)

		err := c.Next()
		if err != nil {
						if ferr := c.App().Config().ErrorHandler(c, err); ferr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path
		if status == fiber.StatusNotFound && route == "/" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Method(), route, status, elapsed)

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("request_id", reqID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("duration", elapsed).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return nil
	}
}
