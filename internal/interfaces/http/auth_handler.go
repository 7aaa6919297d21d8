package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crochet-api/internal/application/auth"
	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// AuthHandler maneja registro, login y logout.
type AuthHandler struct {
	uc           *auth.AuthUseCase
	cookieTTL    time.Duration
	cookieSecure bool
	log          *logger.Logger
}

// NewAuthHandler construye el handler de auth. cookieTTL debe coincidir con la expiración del JWT.
func NewAuthHandler(uc *auth.AuthUseCase, cookieTTL time.Duration, cookieSecure bool, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, cookieTTL: cookieTTL, cookieSecure: cookieSecure, log: log}
}

// Signup godoc
// @Summary      Registrar cliente
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "first_name, last_name, email, password"
// @Success      201   {object}  dto.AuthResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in dto.SignupRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Email == "" || in.Password == "" || in.FirstName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "first_name, email y password son requeridos"})
	}
	if len(in.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "password debe tener al menos 8 caracteres"})
	}
	out, err := h.uc.Signup(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.setCookie(c, out.Token)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Signin godoc
// @Summary      Iniciar sesión
// @Description  Devuelve el JWT y además lo deja en la cookie HttpOnly accessToken.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SigninRequest  true  "email, password"
// @Success      200   {object}  dto.AuthResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/v1/auth/signin [post]
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var in dto.SigninRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Email == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email y password son requeridos"})
	}
	out, err := h.uc.Signin(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.setCookie(c, out.Token)
	return c.JSON(out)
}

// SigninGoogle godoc
// @Summary      Iniciar sesión con Google
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GoogleSigninRequest  true  "grant_code, redirect_uri"
// @Success      200   {object}  dto.AuthResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/v1/auth/signin-google [post]
func (h *AuthHandler) SigninGoogle(c *fiber.Ctx) error {
	var in dto.GoogleSigninRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SigninGoogle(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.setCookie(c, out.Token)
	return c.JSON(out)
}

// Signout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.MessageResponse
// @Router       /api/v1/auth/signout [post]
func (h *AuthHandler) Signout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     CookieAccessToken,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.MessageResponse{Message: "sesión cerrada"})
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieAccessToken,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
