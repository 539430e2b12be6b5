package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mbayend/sama-boutique/internal/core/domain"
	"github.com/mbayend/sama-boutique/internal/port"
)

var (
	ErrSubmissionInProgress   = errors.New("submission already in progress")
	ErrDuplicateSubmission    = errors.New("duplicate submission")
	ErrOrderHeaderWriteFailed = errors.New("order header write failed")
	ErrOrderLinesWriteFailed  = errors.New("order lines write failed")
)

// SubmissionState tracks where the coordinator is in its
// Idle -> Submitting -> Succeeded | Failed machine.
type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const (
	// submitTimeout bounds the external writes so a hung record store
	// cannot leave the coordinator in Submitting forever.
	submitTimeout = 5 * time.Second

	// SuccessDisplayDelay is how long callers should show the
	// confirmation before resetting navigation.
	SuccessDisplayDelay = 3 * time.Second

	submissionKeyPrefix = "submission:"
)

// CheckoutService turns a validated cart into a persisted order header
// plus order-line records. The two writes are dependent but not atomic:
// a line-write failure leaves the header behind, which is surfaced as
// ErrOrderLinesWriteFailed and cleaned up by the vendor reconciliation
// sweep, never rolled back here.
type CheckoutService struct {
	store port.StoreRepository
	cache port.CacheRepository

	mu    sync.Mutex
	state SubmissionState
}

func NewCheckoutService(store port.StoreRepository, cache port.CacheRepository) *CheckoutService {
	return &CheckoutService{
		store: store,
		cache: cache,
		state: StateIdle,
	}
}

// State returns the coordinator's current submission state.
func (s *CheckoutService) State() SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset returns the coordinator to Idle, e.g. after the confirmation
// has been displayed or a failure acknowledged.
func (s *CheckoutService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitting {
		s.state = StateIdle
	}
}

// Submit validates the cart, reserves the submission key, then performs
// the two dependent writes. submissionID deduplicates one checkout
// attempt; the key is released on any failure so a corrected retry is
// always possible. On success the returned cart is empty; on any
// failure the input cart is returned untouched so the shopper can
// retry.
func (s *CheckoutService) Submit(ctx context.Context, submissionID string, cart domain.Cart, info domain.CustomerInfo, shipping domain.ShippingOption) (domain.Order, domain.Cart, error) {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return domain.Order{}, cart, ErrSubmissionInProgress
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	order, next, err := s.submit(ctx, submissionID, cart, info, shipping)

	s.mu.Lock()
	switch {
	case err == nil:
		s.state = StateSucceeded
	case isRecoverableLocally(err):
		// Nothing was written; the shopper corrects and resubmits.
		s.state = StateIdle
	default:
		s.state = StateFailed
	}
	s.mu.Unlock()

	return order, next, err
}

func isRecoverableLocally(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr) || errors.Is(err, ErrDuplicateSubmission)
}

func (s *CheckoutService) submit(ctx context.Context, submissionID string, cart domain.Cart, info domain.CustomerInfo, shipping domain.ShippingOption) (domain.Order, domain.Cart, error) {
	if err := ValidateOrder(cart, info, shipping); err != nil {
		return domain.Order{}, cart, err
	}

	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	key := submissionKeyPrefix + submissionID
	ok, err := s.cache.SetIdempotency(ctx, key)
	if err != nil {
		return domain.Order{}, cart, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return domain.Order{}, cart, ErrDuplicateSubmission
	}

	now := time.Now()
	order := domain.Order{
		ID:             uuid.NewString(),
		Customer:       info.WithDefaults(),
		ShippingOption: shipping.Name,
		Subtotal:       cart.Subtotal(),
		ShippingCost:   shipping.Price,
		Total:          cart.Total(shipping),
		Status:         domain.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.InsertOrder(ctx, order); err != nil {
		s.release(key)
		return domain.Order{}, cart, fmt.Errorf("%w: %v", ErrOrderHeaderWriteFailed, err)
	}

	lines := snapshotLines(order.ID, cart, now)
	if err := s.store.InsertOrderLines(ctx, lines); err != nil {
		// The header is already persisted and stays behind as an
		// orphan; see VendorService.ReconcileOrphans.
		s.release(key)
		log.Printf("checkout: order %s has a header but no lines: %v", order.ID, err)
		return domain.Order{}, cart, fmt.Errorf("%w: %v", ErrOrderLinesWriteFailed, err)
	}

	order.Lines = lines
	return order, domain.Cart{}, nil
}

// snapshotLines copies product name, first image, variant descriptors,
// unit price and quantity out of the cart so the order is decoupled
// from later catalog changes.
func snapshotLines(orderID string, cart domain.Cart, now time.Time) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, domain.OrderLine{
			ID:           uuid.NewString(),
			OrderID:      orderID,
			ProductID:    l.Product.ID,
			ProductName:  l.Product.Name,
			ProductImage: l.Product.MainImage(),
			Size:         l.Variant.Size,
			Color:        l.Variant.Color,
			Price:        l.Product.Price,
			Quantity:     l.Quantity,
			CreatedAt:    now,
		})
	}
	return lines
}

func (s *CheckoutService) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()
	if err := s.cache.ReleaseIdempotency(ctx, key); err != nil {
		log.Printf("checkout: failed to release idempotency key %s: %v", key, err)
	}
}
