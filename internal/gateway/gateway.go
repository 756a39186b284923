package gateway

import (
	"context"

	"shop-platform/internal/entity"
)

// PreferenceItem describes one purchasable line sent to the gateway when a
// hosted-form preference is created.
type PreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	CurrencyID string  `json:"currency_id"`
	UnitPrice  float64 `json:"unit_price"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type PreferenceRequest struct {
	Items      []PreferenceItem `json:"items"`
	BackURLs   BackURLs         `json:"back_urls"`
	AutoReturn string           `json:"auto_return"`
}

type PreferenceResponse struct {
	ID string `json:"id"`
}

type PixPaymentRequest struct {
	TransactionAmount float64      `json:"transaction_amount"`
	Description       string       `json:"description"`
	PaymentMethodID   string       `json:"payment_method_id"`
	Payer             entity.Payer `json:"payer"`
}

type PixPaymentResponse struct {
	ID           string
	Status       entity.PaymentStatus
	QRCode       string
	QRCodeBase64 string
}

type CardPaymentRequest struct {
	TransactionAmount float64      `json:"transaction_amount"`
	Token             string       `json:"token"`
	Description       string       `json:"description"`
	Installments      int          `json:"installments"`
	PaymentMethodID   string       `json:"payment_method_id"`
	IssuerID          string       `json:"issuer_id"`
	Payer             entity.Payer `json:"payer"`
}

type PaymentResult struct {
	ID           string
	Status       entity.PaymentStatus
	StatusDetail string
}

// Gateway is the payment provider seen from the orchestrator: preference
// creation, payment creation and status lookup. Tokenization, fraud checks
// and settlement stay on the provider's side of this interface.
type Gateway interface {
	CreatePreference(ctx context.Context, req *PreferenceRequest) (*PreferenceResponse, error)
	CreatePixPayment(ctx context.Context, req *PixPaymentRequest) (*PixPaymentResponse, error)
	CreateCardPayment(ctx context.Context, req *CardPaymentRequest) (*PaymentResult, error)
	GetPaymentStatus(ctx context.Context, id string) (*PaymentResult, error)
}
