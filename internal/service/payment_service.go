package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"shop-platform/internal/entity"
	"shop-platform/internal/gateway"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const paymentDescription = "Compra na Loja Os Irmaos"

// Outcome is the user-visible result of a checkout attempt, mapped from the
// gateway status. Handlers turn it into the success/pending/failure view.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePending Outcome = "pending"
	OutcomeFailure Outcome = "failure"
)

// OutcomeFor maps a gateway status to a navigation outcome: approved means
// success, pending and in_process mean pending, everything else failure.
func OutcomeFor(status entity.PaymentStatus) Outcome {
	switch status {
	case entity.PaymentStatusApproved:
		return OutcomeSuccess
	case entity.PaymentStatusPending, entity.PaymentStatusInProcess:
		return OutcomePending
	default:
		return OutcomeFailure
	}
}

// CardSubmission is the typed payload forwarded from the hosted payment
// widget. The card itself never reaches this service, only the gateway
// token minted client-side.
type CardSubmission struct {
	Token             string       `json:"token"`
	TransactionAmount float64      `json:"transaction_amount"`
	Installments      int          `json:"installments"`
	PaymentMethodID   string       `json:"payment_method_id"`
	IssuerID          string       `json:"issuer_id"`
	Payer             entity.Payer `json:"payer"`
}

func (s *CardSubmission) Validate() error {
	if s.Token == "" {
		return fmt.Errorf("card token is required")
	}
	if s.TransactionAmount <= 0 {
		return fmt.Errorf("transaction amount must be positive")
	}
	if s.Installments < 1 {
		return fmt.Errorf("installments must be at least 1")
	}
	if s.Payer.Email == "" {
		return fmt.Errorf("payer email is required")
	}
	return nil
}

// OrderArchive persists one record per finalized attempt.
type OrderArchive interface {
	Append(record *entity.OrderRecord) (string, error)
	List() ([]*entity.OrderRecord, error)
}

// EventPublisher pushes finalized attempts onto the order topic.
// Publishing is best effort; a broker outage never fails a checkout.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, record *entity.OrderRecord) error
}

// CartClearer detaches the orchestrator from the cart store; only approved
// pix confirmations clear carts.
type CartClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

// PaymentService turns a cart snapshot into one of the two payment flows
// and reconciles the terminal status into an archived order record.
type PaymentService struct {
	gateway   gateway.Gateway
	orders    OrderArchive
	events    EventPublisher
	carts     CartClearer
	publicURL string
	watches   *watchRegistry

	pollInterval time.Duration
	pollMaxDelay time.Duration
	pollAttempts int
}

func NewPaymentService(gw gateway.Gateway, orders OrderArchive, events EventPublisher, carts CartClearer, publicURL string) *PaymentService {
	return &PaymentService{
		gateway:      gw,
		orders:       orders,
		events:       events,
		carts:        carts,
		publicURL:    publicURL,
		watches:      newWatchRegistry(),
		pollInterval: 5 * time.Second,
		pollMaxDelay: 40 * time.Second,
		pollAttempts: 60,
	}
}

// CreateCardIntent registers a gateway preference for the cart so the
// hosted widget can collect the payment method. The amount is snapshotted
// from the cart lines at call time.
func (s *PaymentService) CreateCardIntent(ctx context.Context, cart *entity.Cart) (*entity.PaymentIntent, error) {
	if cart == nil || len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]gateway.PreferenceItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, gateway.PreferenceItem{
			Title:      line.Name,
			Quantity:   1,
			CurrencyID: "BRL",
			UnitPrice:  line.Price,
		})
	}

	pref, err := s.gateway.CreatePreference(ctx, &gateway.PreferenceRequest{
		Items: items,
		BackURLs: gateway.BackURLs{
			Success: s.publicURL + "/success.html",
			Failure: s.publicURL + "/failure.html",
			Pending: s.publicURL + "/pending.html",
		},
		AutoReturn: "approved",
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error creating preference")
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	return &entity.PaymentIntent{
		Kind:       entity.PaymentKindCard,
		Amount:     cart.Total(),
		ExternalID: pref.ID,
		Status:     entity.PaymentStatusCreated,
	}, nil
}

// CreatePixIntent creates a pix payment for the cart total and starts a
// watch session that polls the gateway until the payment reaches a
// terminal status, is cancelled, or runs out of attempts.
func (s *PaymentService) CreatePixIntent(ctx context.Context, cart *entity.Cart, payer entity.Payer) (*entity.PaymentIntent, error) {
	if cart == nil || len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	resp, err := s.gateway.CreatePixPayment(ctx, &gateway.PixPaymentRequest{
		TransactionAmount: cart.Total(),
		Description:       paymentDescription,
		PaymentMethodID:   "pix",
		Payer:             payer,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error creating pix payment")
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if resp.QRCodeBase64 == "" {
		logger.Error().Str("payment_id", resp.ID).Msg("Pix payment created without QR payload")
		return nil, ErrNoQRCode
	}

	intent := &entity.PaymentIntent{
		Kind:         entity.PaymentKindPix,
		Amount:       cart.Total(),
		ExternalID:   resp.ID,
		Status:       entity.PaymentStatusPending,
		Payer:        payer,
		QRCode:       resp.QRCode,
		QRCodeBase64: resp.QRCodeBase64,
	}
	intent.WatchID = s.startWatch(intent, cart.SessionID)

	return intent, nil
}

// ProcessCard submits the widget payload to the gateway in a single round
// trip and archives the outcome. A rejected payment is a valid business
// outcome, not an error.
func (s *PaymentService) ProcessCard(ctx context.Context, sub *CardSubmission) (*gateway.PaymentResult, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	result, err := s.gateway.CreateCardPayment(ctx, &gateway.CardPaymentRequest{
		TransactionAmount: sub.TransactionAmount,
		Token:             sub.Token,
		Description:       paymentDescription,
		Installments:      sub.Installments,
		PaymentMethodID:   sub.PaymentMethodID,
		IssuerID:          sub.IssuerID,
		Payer:             sub.Payer,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error processing card payment")
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	s.archive(ctx, &entity.OrderRecord{
		Type:         entity.PaymentKindCard,
		Payer:        sub.Payer,
		Amount:       sub.TransactionAmount,
		Installments: sub.Installments,
		PaymentID:    result.ID,
		Status:       result.Status,
		StatusDetail: result.StatusDetail,
	})

	return result, nil
}

// PaymentStatus is the passthrough status lookup polled by storefront
// clients that manage their own pix confirmation.
func (s *PaymentService) PaymentStatus(ctx context.Context, id string) (*gateway.PaymentResult, error) {
	result, err := s.gateway.GetPaymentStatus(ctx, id)
	if err != nil {
		logger.Error().Err(err).Str("payment_id", id).Msg("Error querying payment status")
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return result, nil
}

// Orders lists archived records, oldest first.
func (s *PaymentService) Orders(ctx context.Context) ([]*entity.OrderRecord, error) {
	return s.orders.List()
}

func (s *PaymentService) archive(ctx context.Context, record *entity.OrderRecord) {
	name, err := s.orders.Append(record)
	if err != nil {
		logger.Error().Err(err).Str("payment_id", record.PaymentID).Msg("Error archiving order record")
	} else {
		logger.Info().Str("file", name).Str("payment_id", record.PaymentID).Msg("Order record archived")
	}

	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, record); err != nil {
		logger.Error().Err(err).Str("payment_id", record.PaymentID).Msg("Error publishing order event")
	}
}
