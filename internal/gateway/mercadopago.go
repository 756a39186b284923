package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shop-platform/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// MercadoPago talks to the Mercado Pago REST API. Responses that do not
// carry the fields the checkout needs (preference id, pix QR payload) are
// reported as errors here so callers never proceed with a half-created
// payment.
type MercadoPago struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

func NewMercadoPago(baseURL, accessToken string) *MercadoPago {
	return &MercadoPago{
		baseURL:     baseURL,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *MercadoPago) CreatePreference(ctx context.Context, req *PreferenceRequest) (*PreferenceResponse, error) {
	var resp PreferenceResponse
	if err := g.post(ctx, "/checkout/preferences", req, &resp); err != nil {
		return nil, err
	}

	if resp.ID == "" {
		return nil, fmt.Errorf("gateway returned preference without id")
	}

	return &resp, nil
}

// paymentBody is the wire shape shared by pix and card payment responses.
type paymentBody struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	StatusDetail       string      `json:"status_detail"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (g *MercadoPago) CreatePixPayment(ctx context.Context, req *PixPaymentRequest) (*PixPaymentResponse, error) {
	var body paymentBody
	if err := g.post(ctx, "/v1/payments", req, &body); err != nil {
		return nil, err
	}

	return &PixPaymentResponse{
		ID:           body.ID.String(),
		Status:       entity.PaymentStatus(body.Status),
		QRCode:       body.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: body.PointOfInteraction.TransactionData.QRCodeBase64,
	}, nil
}

func (g *MercadoPago) CreateCardPayment(ctx context.Context, req *CardPaymentRequest) (*PaymentResult, error) {
	var body paymentBody
	if err := g.post(ctx, "/v1/payments", req, &body); err != nil {
		return nil, err
	}

	return &PaymentResult{
		ID:           body.ID.String(),
		Status:       entity.PaymentStatus(body.Status),
		StatusDetail: body.StatusDetail,
	}, nil
}

func (g *MercadoPago) GetPaymentStatus(ctx context.Context, id string) (*PaymentResult, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid payment id %q", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/payments/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)

	var body paymentBody
	if err := g.do(req, &body); err != nil {
		return nil, err
	}

	return &PaymentResult{
		ID:           body.ID.String(),
		Status:       entity.PaymentStatus(body.Status),
		StatusDetail: body.StatusDetail,
	}, nil
}

func (g *MercadoPago) post(ctx context.Context, path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	return g.do(req, out)
}

func (g *MercadoPago) do(req *http.Request, out interface{}) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Error().Int("status", resp.StatusCode).Str("path", req.URL.Path).Bytes("body", snippet).Msg("Gateway request rejected")
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}

	return nil
}
