package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"shop-platform/internal/entity"
)

// WatchOutcome is how a pix watch session ended.
type WatchOutcome string

const (
	WatchSuccess   WatchOutcome = "success"
	WatchFailure   WatchOutcome = "failure"
	WatchTimeout   WatchOutcome = "timeout"
	WatchCancelled WatchOutcome = "cancelled"
)

// watchSession tracks one pix confirmation loop. Polls are serial: the
// single goroutine behind done never has two status requests in flight.
type watchSession struct {
	id     string
	cancel context.CancelFunc

	mu      sync.Mutex
	outcome WatchOutcome
	done    chan struct{}
}

func (w *watchSession) finish(outcome WatchOutcome) {
	w.mu.Lock()
	w.outcome = outcome
	w.mu.Unlock()
	close(w.done)
}

// Outcome blocks until the session ends and returns how it ended.
func (w *watchSession) Outcome() WatchOutcome {
	<-w.done
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outcome
}

type watchRegistry struct {
	mu       sync.Mutex
	sessions map[string]*watchSession
}

func newWatchRegistry() *watchRegistry {
	return &watchRegistry{sessions: make(map[string]*watchSession)}
}

// add registers a session, pruning sessions that already ended so the map
// stays bounded by churn. Ended sessions remain queryable until the next
// registration.
func (r *watchRegistry) add(w *watchSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		select {
		case <-s.done:
			delete(r.sessions, id)
		default:
		}
	}
	r.sessions[w.id] = w
}

func (r *watchRegistry) get(id string) (*watchSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.sessions[id]
	return w, ok
}

// startWatch launches the confirmation loop for a pending pix intent and
// returns the watch handle id.
func (s *PaymentService) startWatch(intent *entity.PaymentIntent, cartSessionID string) string {
	ctx, cancel := context.WithCancel(context.Background())
	w := &watchSession{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.watches.add(w)

	go s.runWatch(ctx, w, intent, cartSessionID)

	return w.id
}

// CancelWatch aborts a running watch session, e.g. when the shopper
// navigates away from the QR code.
func (s *PaymentService) CancelWatch(id string) error {
	w, ok := s.watches.get(id)
	if !ok {
		return ErrWatchNotFound
	}
	w.cancel()
	return nil
}

// WatchOutcome blocks until the given session ends. Used by tests and by
// callers that want the server-side verdict instead of polling themselves.
func (s *PaymentService) WatchOutcome(id string) (WatchOutcome, error) {
	w, ok := s.watches.get(id)
	if !ok {
		return "", ErrWatchNotFound
	}
	return w.Outcome(), nil
}

func (s *PaymentService) runWatch(ctx context.Context, w *watchSession, intent *entity.PaymentIntent, cartSessionID string) {
	defer w.cancel()

	delay := s.pollInterval
	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				logger.Info().Str("watch_id", w.id).Str("payment_id", intent.ExternalID).Msg("Watch session cancelled")
				w.finish(WatchCancelled)
				return
			case <-timer.C:
			}
			if delay *= 2; delay > s.pollMaxDelay {
				delay = s.pollMaxDelay
			}
		}

		result, err := s.gateway.GetPaymentStatus(ctx, intent.ExternalID)
		if err != nil {
			if ctx.Err() != nil {
				w.finish(WatchCancelled)
				return
			}
			// Transient failures reschedule like any non-terminal status.
			logger.Warn().Err(err).Str("payment_id", intent.ExternalID).Msg("Status poll failed, rescheduling")
			continue
		}

		switch result.Status {
		case entity.PaymentStatusApproved:
			intent.Status = entity.PaymentStatusApproved
			s.finalizePix(ctx, intent, result.StatusDetail, cartSessionID)
			w.finish(WatchSuccess)
			return
		case entity.PaymentStatusRejected:
			intent.Status = entity.PaymentStatusRejected
			s.finalizePix(ctx, intent, result.StatusDetail, "")
			w.finish(WatchFailure)
			return
		default:
			// Every other status, pending and in_process included,
			// reschedules. Never stop on a non-terminal status.
		}
	}

	logger.Warn().Str("payment_id", intent.ExternalID).Int("attempts", s.pollAttempts).Msg("Watch session gave up, payment still not terminal")
	w.finish(WatchTimeout)
}

// finalizePix archives the record at the one lifecycle event both flows
// share: a terminal status. Approved confirmations also clear the cart.
func (s *PaymentService) finalizePix(ctx context.Context, intent *entity.PaymentIntent, detail, cartSessionID string) {
	s.archive(ctx, &entity.OrderRecord{
		Type:         entity.PaymentKindPix,
		Payer:        intent.Payer,
		Amount:       intent.Amount,
		PaymentID:    intent.ExternalID,
		Status:       intent.Status,
		StatusDetail: detail,
	})

	if cartSessionID == "" || s.carts == nil {
		return
	}
	if err := s.carts.Clear(ctx, cartSessionID); err != nil {
		logger.Warn().Err(err).Str("session_id", cartSessionID).Msg("Error clearing cart after approval")
	}
}
