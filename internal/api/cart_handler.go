package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"shop-platform/internal/entity"
	"shop-platform/internal/service"
)

// Carts is the server-side cart store.
type Carts interface {
	NewSession(ctx context.Context) (string, error)
	Get(ctx context.Context, sessionID string) (*entity.Cart, error)
	AddLine(ctx context.Context, sessionID string, product *entity.Product) (*entity.Cart, error)
	RemoveLine(ctx context.Context, sessionID string, index int) (*entity.Cart, error)
}

type CartHandler struct {
	carts   Carts
	catalog Catalog
}

func NewCartHandler(carts Carts, catalog Catalog) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog}
}

type cartResponse struct {
	SessionID string            `json:"session_id"`
	Lines     []entity.CartLine `json:"lines"`
	Total     float64           `json:"total"`
	Count     int               `json:"count"`
}

func toCartResponse(cart *entity.Cart) cartResponse {
	return cartResponse{
		SessionID: cart.SessionID,
		Lines:     cart.Lines,
		Total:     cart.Total(),
		Count:     len(cart.Lines),
	}
}

// CreateSession opens an empty cart --> POST /cart
func (h *CartHandler) CreateSession(c echo.Context) error {
	sessionID, err := h.carts.NewSession(c.Request().Context())
	if err != nil {
		return c.JSON(500, map[string]string{"error": "failed to create cart"})
	}

	return c.JSON(200, map[string]string{"session_id": sessionID})
}

// GetCart returns the cart --> GET /cart/:sid
func (h *CartHandler) GetCart(c echo.Context) error {
	cart, err := h.carts.Get(c.Request().Context(), c.Param("sid"))
	if err != nil {
		if errors.Is(err, service.ErrCartNotFound) {
			return c.JSON(404, map[string]string{"error": "cart not found"})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, toCartResponse(cart))
}

// AddItem appends a product line --> POST /cart/:sid/items {product_id}
func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	body := struct {
		ProductID int `json:"product_id"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	product, err := h.catalog.GetProduct(ctx, body.ProductID)
	if err != nil {
		return c.JSON(404, map[string]string{"error": "product not found"})
	}

	cart, err := h.carts.AddLine(ctx, c.Param("sid"), product)
	if err != nil {
		if errors.Is(err, service.ErrCartNotFound) {
			return c.JSON(404, map[string]string{"error": "cart not found"})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, toCartResponse(cart))
}

// RemoveItem deletes a line by display index --> DELETE /cart/:sid/items/:index
func (h *CartHandler) RemoveItem(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid index"})
	}

	cart, err := h.carts.RemoveLine(c.Request().Context(), c.Param("sid"), index)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartNotFound):
			return c.JSON(404, map[string]string{"error": "cart not found"})
		case errors.Is(err, service.ErrLineNotFound):
			return c.JSON(400, map[string]string{"error": "line index out of range"})
		default:
			return c.JSON(500, map[string]string{"error": err.Error()})
		}
	}

	return c.JSON(200, toCartResponse(cart))
}
