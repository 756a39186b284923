package api

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"shop-platform/internal/service"
)

// Verifier is the credential service surface.
type Verifier interface {
	Register(ctx context.Context, username, secret string) error
	Login(ctx context.Context, username, secret string) (string, error)
	ValidateToken(ctx context.Context, username, token string) error
}

type AuthHandler struct {
	auth Verifier
}

func NewAuthHandler(auth Verifier) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentials struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

// Register creates a credential pair --> POST /register
func (h *AuthHandler) Register(c echo.Context) error {
	creds := credentials{}
	if err := c.Bind(&creds); err != nil {
		return c.JSON(400, map[string]interface{}{"success": false, "error": "Invalid request payload"})
	}

	err := h.auth.Register(c.Request().Context(), creds.Usuario, creds.Senha)
	switch {
	case err == nil:
		return c.JSON(200, map[string]interface{}{"success": true})
	case errors.Is(err, service.ErrMissingCredentials):
		return c.JSON(400, map[string]interface{}{"success": false, "error": "username and password are required"})
	case errors.Is(err, service.ErrUserExists):
		return c.JSON(409, map[string]interface{}{"success": false, "error": "username already taken"})
	default:
		return c.JSON(500, map[string]interface{}{"success": false, "error": "registration failed"})
	}
}

// Login verifies credentials and issues a session token --> POST /login
// Unknown username, wrong password and internal lookup failures all
// collapse into the same generic message so usernames cannot be probed.
func (h *AuthHandler) Login(c echo.Context) error {
	creds := credentials{}
	if err := c.Bind(&creds); err != nil {
		return c.JSON(400, map[string]interface{}{"success": false, "error": "Invalid request payload"})
	}

	token, err := h.auth.Login(c.Request().Context(), creds.Usuario, creds.Senha)
	if err != nil {
		if errors.Is(err, service.ErrMissingCredentials) {
			return c.JSON(400, map[string]interface{}{"success": false, "error": "username and password are required"})
		}
		return c.JSON(401, map[string]interface{}{"success": false, "error": "invalid credentials"})
	}

	return c.JSON(200, map[string]interface{}{"success": true, "token": token})
}

// ValidateSession checks a session token --> GET /session/validate
func (h *AuthHandler) ValidateSession(c echo.Context) error {
	token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	username := c.QueryParam("usuario")
	if token == "" || username == "" {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	if err := h.auth.ValidateToken(c.Request().Context(), username, token); err != nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	return c.JSON(200, map[string]string{"message": "Session is valid"})
}
