package api

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"shop-platform/internal/entity"
	"shop-platform/internal/gateway"
	"shop-platform/internal/service"
)

// Orchestrator is the payment session surface exposed over HTTP.
type Orchestrator interface {
	CreateCardIntent(ctx context.Context, cart *entity.Cart) (*entity.PaymentIntent, error)
	CreatePixIntent(ctx context.Context, cart *entity.Cart, payer entity.Payer) (*entity.PaymentIntent, error)
	ProcessCard(ctx context.Context, sub *service.CardSubmission) (*gateway.PaymentResult, error)
	PaymentStatus(ctx context.Context, id string) (*gateway.PaymentResult, error)
	CancelWatch(id string) error
	Orders(ctx context.Context) ([]*entity.OrderRecord, error)
}

type PaymentHandler struct {
	payments Orchestrator
	carts    Carts
}

func NewPaymentHandler(payments Orchestrator, carts Carts) *PaymentHandler {
	return &PaymentHandler{payments: payments, carts: carts}
}

type preferenceItem struct {
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
}

// snapshotCart resolves the cart the attempt is made against: the
// server-side session when one is given, otherwise the client-sent items.
func (h *PaymentHandler) snapshotCart(ctx context.Context, sessionID string, items []preferenceItem) (*entity.Cart, error) {
	if sessionID != "" {
		return h.carts.Get(ctx, sessionID)
	}

	cart := &entity.Cart{}
	for _, item := range items {
		cart.Lines = append(cart.Lines, entity.CartLine{Name: item.Title, Price: item.UnitPrice})
	}
	return cart, nil
}

// CreatePreference starts the card flow --> POST /create_preference
func (h *PaymentHandler) CreatePreference(c echo.Context) error {
	ctx := c.Request().Context()

	body := struct {
		SessionID string           `json:"session_id"`
		Items     []preferenceItem `json:"items"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	cart, err := h.snapshotCart(ctx, body.SessionID, body.Items)
	if err != nil {
		if errors.Is(err, service.ErrCartNotFound) {
			return c.JSON(404, map[string]string{"error": "cart not found"})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	intent, err := h.payments.CreateCardIntent(ctx, cart)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			return c.JSON(400, map[string]string{"error": "cart is empty"})
		}
		return c.JSON(500, map[string]string{"error": "failed to create preference"})
	}

	return c.JSON(200, map[string]string{"id": intent.ExternalID})
}

// ProcessPix starts the pix flow --> POST /process_pix
func (h *PaymentHandler) ProcessPix(c echo.Context) error {
	ctx := c.Request().Context()

	body := struct {
		SessionID         string       `json:"session_id"`
		TransactionAmount float64      `json:"transaction_amount"`
		Payer             entity.Payer `json:"payer"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if body.Payer.Email == "" {
		return c.JSON(400, map[string]string{"error": "payer email is required"})
	}

	var cart *entity.Cart
	var err error
	if body.SessionID != "" {
		cart, err = h.carts.Get(ctx, body.SessionID)
		if err != nil {
			if errors.Is(err, service.ErrCartNotFound) {
				return c.JSON(404, map[string]string{"error": "cart not found"})
			}
			return c.JSON(500, map[string]string{"error": err.Error()})
		}
	} else {
		cart = &entity.Cart{}
		if body.TransactionAmount > 0 {
			cart.Lines = []entity.CartLine{{Price: body.TransactionAmount}}
		}
	}

	intent, err := h.payments.CreatePixIntent(ctx, cart, body.Payer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			return c.JSON(400, map[string]string{"error": "cart is empty"})
		case errors.Is(err, service.ErrNoQRCode):
			return c.JSON(500, map[string]string{"error": "pix qr code unavailable"})
		default:
			return c.JSON(500, map[string]string{"error": "failed to process pix"})
		}
	}

	return c.JSON(200, map[string]interface{}{
		"id":             intent.ExternalID,
		"qr_code":        intent.QRCode,
		"qr_code_base64": intent.QRCodeBase64,
		"watch_id":       intent.WatchID,
	})
}

// ProcessCard submits the widget payload --> POST /process_card
// A 200 with the gateway status tells the widget the submission was
// accepted; any other code makes it re-enable the form.
func (h *PaymentHandler) ProcessCard(c echo.Context) error {
	sub := service.CardSubmission{}
	if err := c.Bind(&sub); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if err := sub.Validate(); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}

	result, err := h.payments.ProcessCard(c.Request().Context(), &sub)
	if err != nil {
		return c.JSON(500, map[string]string{"error": "failed to process card payment"})
	}

	return c.JSON(200, map[string]string{
		"status":  string(result.Status),
		"detail":  result.StatusDetail,
		"outcome": string(service.OutcomeFor(result.Status)),
	})
}

// GetPaymentStatus is the poll endpoint --> GET /payment_status/:id
func (h *PaymentHandler) GetPaymentStatus(c echo.Context) error {
	result, err := h.payments.PaymentStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(500, map[string]string{"error": "failed to query payment status"})
	}

	return c.JSON(200, map[string]string{
		"status": string(result.Status),
		"detail": result.StatusDetail,
	})
}

// CancelWatch aborts a pix watch session --> DELETE /payment_watch/:id
func (h *PaymentHandler) CancelWatch(c echo.Context) error {
	if err := h.payments.CancelWatch(c.Param("id")); err != nil {
		return c.JSON(404, map[string]string{"error": "watch session not found"})
	}

	return c.JSON(200, map[string]bool{"success": true})
}

// GetOrders lists archived attempts --> GET /orders (JWT protected)
func (h *PaymentHandler) GetOrders(c echo.Context) error {
	records, err := h.payments.Orders(c.Request().Context())
	if err != nil {
		return c.JSON(500, map[string]string{"error": "failed to list orders"})
	}

	return c.JSON(200, records)
}
