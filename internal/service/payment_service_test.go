package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-platform/internal/entity"
	"shop-platform/internal/gateway"
)

// mockGateway implements gateway.Gateway and counts every call so tests
// can assert that no network round trip happened.
type mockGateway struct {
	mu sync.Mutex

	preferenceID string
	prefErr      error

	pixResp *gateway.PixPaymentResponse
	pixErr  error

	cardResult *gateway.PaymentResult
	cardErr    error

	statuses []entity.PaymentStatus

	createCalls int
	statusCalls int
}

func (m *mockGateway) CreatePreference(_ context.Context, _ *gateway.PreferenceRequest) (*gateway.PreferenceResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.prefErr != nil {
		return nil, m.prefErr
	}
	return &gateway.PreferenceResponse{ID: m.preferenceID}, nil
}

func (m *mockGateway) CreatePixPayment(_ context.Context, _ *gateway.PixPaymentRequest) (*gateway.PixPaymentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.pixErr != nil {
		return nil, m.pixErr
	}
	return m.pixResp, nil
}

func (m *mockGateway) CreateCardPayment(_ context.Context, _ *gateway.CardPaymentRequest) (*gateway.PaymentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.cardErr != nil {
		return nil, m.cardErr
	}
	return m.cardResult, nil
}

func (m *mockGateway) GetPaymentStatus(_ context.Context, id string) (*gateway.PaymentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.statusCalls
	m.statusCalls++
	if idx >= len(m.statuses) {
		idx = len(m.statuses) - 1
	}
	return &gateway.PaymentResult{ID: id, Status: m.statuses[idx]}, nil
}

func (m *mockGateway) calls() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls, m.statusCalls
}

// memoryArchive captures archived records; safe for the watch goroutine.
type memoryArchive struct {
	mu      sync.Mutex
	records []*entity.OrderRecord
}

func (a *memoryArchive) Append(record *entity.OrderRecord) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	a.records = append(a.records, record)
	return "in-memory", nil
}

func (a *memoryArchive) List() ([]*entity.OrderRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*entity.OrderRecord(nil), a.records...), nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []*entity.OrderRecord
}

func (p *capturePublisher) PublishOrderEvent(_ context.Context, record *entity.OrderRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, record)
	return nil
}

type captureClearer struct {
	mu      sync.Mutex
	cleared []string
}

func (c *captureClearer) Clear(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared = append(c.cleared, sessionID)
	return nil
}

func (c *captureClearer) sessions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.cleared...)
}

func newTestService(gw *mockGateway, archive *memoryArchive, events *capturePublisher, carts *captureClearer) *PaymentService {
	svc := NewPaymentService(gw, archive, events, carts, "http://localhost:8082")
	svc.pollInterval = 1 * time.Millisecond
	svc.pollMaxDelay = 4 * time.Millisecond
	return svc
}

func testCart(prices ...float64) *entity.Cart {
	cart := &entity.Cart{SessionID: "sess-1"}
	for _, price := range prices {
		cart.Lines = append(cart.Lines, entity.CartLine{Name: "item", Price: price})
	}
	return cart
}

func testPayer() entity.Payer {
	return entity.Payer{
		Email:     "cliente@test.com",
		FirstName: "Cliente",
		LastName:  "Teste",
		Identification: entity.Identification{
			Type:   "CPF",
			Number: "19119119100",
		},
	}
}

func TestCreateCardIntent_SnapshotsAmount(t *testing.T) {
	gw := &mockGateway{preferenceID: "pref-123"}
	svc := newTestService(gw, &memoryArchive{}, &capturePublisher{}, &captureClearer{})

	cart := testCart(39.90, 9.90)
	intent, err := svc.CreateCardIntent(context.Background(), cart)

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentKindCard, intent.Kind)
	assert.Equal(t, "pref-123", intent.ExternalID)
	assert.InDelta(t, 49.80, intent.Amount, 0.0001)

	// Mutating the cart afterwards must not touch the snapshot.
	cart.Lines = append(cart.Lines, entity.CartLine{Name: "late add", Price: 100})
	assert.InDelta(t, 49.80, intent.Amount, 0.0001)
}

func TestCreate_EmptyCartNeverCallsGateway(t *testing.T) {
	gw := &mockGateway{preferenceID: "pref-123"}
	svc := newTestService(gw, &memoryArchive{}, &capturePublisher{}, &captureClearer{})

	_, err := svc.CreateCardIntent(context.Background(), testCart())
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.CreatePixIntent(context.Background(), testCart(), testPayer())
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.CreateCardIntent(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	creates, polls := gw.calls()
	assert.Equal(t, 0, creates)
	assert.Equal(t, 0, polls)
}

func TestCreateCardIntent_GatewayFailure(t *testing.T) {
	gw := &mockGateway{prefErr: errors.New("connection refused")}
	svc := newTestService(gw, &memoryArchive{}, &capturePublisher{}, &captureClearer{})

	_, err := svc.CreateCardIntent(context.Background(), testCart(10))
	assert.ErrorIs(t, err, ErrGateway)
}

func TestCreatePixIntent_MissingQRCode(t *testing.T) {
	gw := &mockGateway{pixResp: &gateway.PixPaymentResponse{ID: "777", Status: entity.PaymentStatusPending}}
	svc := newTestService(gw, &memoryArchive{}, &capturePublisher{}, &captureClearer{})

	_, err := svc.CreatePixIntent(context.Background(), testCart(10), testPayer())
	assert.ErrorIs(t, err, ErrNoQRCode)
	assert.NotErrorIs(t, err, ErrGateway)
}

func TestProcessCard_ApprovedArchivesRecord(t *testing.T) {
	gw := &mockGateway{cardResult: &gateway.PaymentResult{
		ID:           "123456",
		Status:       entity.PaymentStatusApproved,
		StatusDetail: "accredited",
	}}
	archive := &memoryArchive{}
	events := &capturePublisher{}
	svc := newTestService(gw, archive, events, &captureClearer{})

	sub := &CardSubmission{
		Token:             "tok-abc",
		TransactionAmount: 49.80,
		Installments:      1,
		PaymentMethodID:   "master",
		Payer:             testPayer(),
	}
	result, err := svc.ProcessCard(context.Background(), sub)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, OutcomeFor(result.Status))

	require.Len(t, archive.records, 1)
	record := archive.records[0]
	assert.Equal(t, entity.PaymentKindCard, record.Type)
	assert.Equal(t, "123456", record.PaymentID)
	assert.Equal(t, entity.PaymentStatusApproved, record.Status)
	assert.InDelta(t, 49.80, record.Amount, 0.0001)
	assert.Equal(t, testPayer(), record.Payer)

	require.Len(t, events.events, 1)
	assert.Equal(t, "123456", events.events[0].PaymentID)
}

func TestProcessCard_InvalidSubmission(t *testing.T) {
	gw := &mockGateway{}
	svc := newTestService(gw, &memoryArchive{}, &capturePublisher{}, &captureClearer{})

	_, err := svc.ProcessCard(context.Background(), &CardSubmission{
		TransactionAmount: 10,
		Installments:      1,
		Payer:             testPayer(),
	})
	assert.Error(t, err) // no token

	creates, _ := gw.calls()
	assert.Equal(t, 0, creates)
}

func pixGateway(statuses ...entity.PaymentStatus) *mockGateway {
	return &mockGateway{
		pixResp: &gateway.PixPaymentResponse{
			ID:           "987654",
			Status:       entity.PaymentStatusPending,
			QRCode:       "00020126pix-copy-paste",
			QRCodeBase64: "aVFScGF5bG9hZA==",
		},
		statuses: statuses,
	}
}

func TestWatchPix_ApprovedOnThirdPoll(t *testing.T) {
	gw := pixGateway(entity.PaymentStatusPending, entity.PaymentStatusPending, entity.PaymentStatusApproved)
	archive := &memoryArchive{}
	clearer := &captureClearer{}
	svc := newTestService(gw, archive, &capturePublisher{}, clearer)

	intent, err := svc.CreatePixIntent(context.Background(), testCart(129.90), testPayer())
	require.NoError(t, err)
	require.NotEmpty(t, intent.WatchID)
	assert.InDelta(t, 129.90, intent.Amount, 0.0001)

	outcome, err := svc.WatchOutcome(intent.WatchID)
	require.NoError(t, err)
	assert.Equal(t, WatchSuccess, outcome)

	_, polls := gw.calls()
	assert.Equal(t, 3, polls)

	require.Len(t, archive.records, 1)
	record := archive.records[0]
	assert.Equal(t, entity.PaymentKindPix, record.Type)
	assert.Equal(t, "987654", record.PaymentID)
	assert.Equal(t, entity.PaymentStatusApproved, record.Status)
	assert.InDelta(t, 129.90, record.Amount, 0.0001)

	assert.Equal(t, []string{"sess-1"}, clearer.sessions())
}

func TestWatchPix_RejectedStopsWithoutClearingCart(t *testing.T) {
	gw := pixGateway(entity.PaymentStatusRejected)
	archive := &memoryArchive{}
	clearer := &captureClearer{}
	svc := newTestService(gw, archive, &capturePublisher{}, clearer)

	intent, err := svc.CreatePixIntent(context.Background(), testCart(50), testPayer())
	require.NoError(t, err)

	outcome, err := svc.WatchOutcome(intent.WatchID)
	require.NoError(t, err)
	assert.Equal(t, WatchFailure, outcome)

	_, polls := gw.calls()
	assert.Equal(t, 1, polls)

	require.Len(t, archive.records, 1)
	assert.Equal(t, entity.PaymentStatusRejected, archive.records[0].Status)
	assert.Empty(t, clearer.sessions())
}

func TestWatchPix_NonTerminalStatusesAlwaysReschedule(t *testing.T) {
	// Everything that is not approved or rejected reschedules, including
	// values the gateway may add later.
	gw := pixGateway(
		entity.PaymentStatusPending,
		entity.PaymentStatusInProcess,
		entity.PaymentStatusCreated,
		entity.PaymentStatus("authorized"),
		entity.PaymentStatus("charged_back"),
		entity.PaymentStatusApproved,
	)
	svc := newTestService(gw, &memoryArchive{}, &capturePublisher{}, &captureClearer{})

	intent, err := svc.CreatePixIntent(context.Background(), testCart(10), testPayer())
	require.NoError(t, err)

	outcome, err := svc.WatchOutcome(intent.WatchID)
	require.NoError(t, err)
	assert.Equal(t, WatchSuccess, outcome)

	_, polls := gw.calls()
	assert.Equal(t, 6, polls)
}

func TestWatchPix_MaxAttemptsYieldsTimeout(t *testing.T) {
	gw := pixGateway(entity.PaymentStatusPending)
	archive := &memoryArchive{}
	svc := newTestService(gw, archive, &capturePublisher{}, &captureClearer{})
	svc.pollAttempts = 3

	intent, err := svc.CreatePixIntent(context.Background(), testCart(10), testPayer())
	require.NoError(t, err)

	outcome, err := svc.WatchOutcome(intent.WatchID)
	require.NoError(t, err)
	assert.Equal(t, WatchTimeout, outcome)

	_, polls := gw.calls()
	assert.Equal(t, 3, polls)
	assert.Empty(t, archive.records) // timed-out attempts are not finalized
}

func TestWatchPix_CancelStopsPolling(t *testing.T) {
	gw := pixGateway(entity.PaymentStatusPending)
	archive := &memoryArchive{}
	svc := newTestService(gw, archive, &capturePublisher{}, &captureClearer{})
	svc.pollInterval = 1 * time.Hour // would poll forever without cancel

	intent, err := svc.CreatePixIntent(context.Background(), testCart(10), testPayer())
	require.NoError(t, err)

	require.NoError(t, svc.CancelWatch(intent.WatchID))

	outcome, err := svc.WatchOutcome(intent.WatchID)
	require.NoError(t, err)
	assert.Equal(t, WatchCancelled, outcome)
	assert.Empty(t, archive.records)
}

func TestCancelWatch_UnknownID(t *testing.T) {
	svc := newTestService(&mockGateway{}, &memoryArchive{}, &capturePublisher{}, &captureClearer{})
	assert.ErrorIs(t, svc.CancelWatch("nope"), ErrWatchNotFound)
}

func TestOutcomeFor_Mapping(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, OutcomeFor(entity.PaymentStatusApproved))
	assert.Equal(t, OutcomePending, OutcomeFor(entity.PaymentStatusPending))
	assert.Equal(t, OutcomePending, OutcomeFor(entity.PaymentStatusInProcess))
	assert.Equal(t, OutcomeFailure, OutcomeFor(entity.PaymentStatusRejected))
	assert.Equal(t, OutcomeFailure, OutcomeFor(entity.PaymentStatus("cancelled")))
}
