package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mbayend/sama-boutique/internal/core/domain"
)

// Mock StoreRepository
type mockStore struct {
	mu           sync.Mutex
	orders       []domain.Order
	lines        []domain.OrderLine
	headerErr    error
	linesErr     error
	headerGate   chan struct{} // when set, InsertOrder blocks until closed
	orphanIDs    []string
	deletedOrder []string
}

func (m *mockStore) SelectProducts(ctx context.Context) ([]domain.Product, error) { return nil, nil }
func (m *mockStore) SelectProduct(ctx context.Context, id string) (*domain.Product, error) {
	return nil, nil
}
func (m *mockStore) InsertProduct(ctx context.Context, p domain.Product) error { return nil }
func (m *mockStore) DeleteProduct(ctx context.Context, id string) error        { return nil }

func (m *mockStore) SelectOrders(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Order(nil), m.orders...), nil
}

func (m *mockStore) InsertOrder(ctx context.Context, order domain.Order) error {
	if m.headerGate != nil {
		<-m.headerGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.headerErr != nil {
		return m.headerErr
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockStore) InsertOrderLines(ctx context.Context, lines []domain.OrderLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.linesErr != nil {
		return m.linesErr
	}
	m.lines = append(m.lines, lines...)
	return nil
}

func (m *mockStore) DeleteOrderLines(ctx context.Context, orderID string) error { return nil }

func (m *mockStore) DeleteOrder(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedOrder = append(m.deletedOrder, orderID)
	return nil
}

func (m *mockStore) SelectOrphanOrderIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	return m.orphanIDs, nil
}

// Mock CacheRepository
type mockCache struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func newMockCache() *mockCache {
	return &mockCache{keys: make(map[string]bool)}
}

func (m *mockCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mockCache) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func (m *mockCache) held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[key]
}

func filledCart(t *testing.T) domain.Cart {
	t.Helper()
	p := standardProduct()
	cart, err := domain.Cart{}.Add(p, p.Variants[0], 2)
	if err != nil {
		t.Fatalf("cart setup failed: %v", err)
	}
	return cart
}

func TestSubmit_Success(t *testing.T) {
	store := &mockStore{}
	cache := newMockCache()
	svc := NewCheckoutService(store, cache)

	cart := filledCart(t)
	order, next, err := svc.Submit(context.Background(), "sub-1", cart, validCustomer(), standardShipping())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if order.Subtotal != 50000 {
		t.Errorf("expected subtotal 50000, got %d", order.Subtotal)
	}
	if order.ShippingCost != 2000 {
		t.Errorf("expected shipping cost 2000, got %d", order.ShippingCost)
	}
	if order.Total != 52000 {
		t.Errorf("expected total 52000, got %d", order.Total)
	}
	if order.Status != domain.OrderStatusPending {
		t.Errorf("expected pending status, got %s", order.Status)
	}
	if order.Customer.Region != domain.DefaultRegion {
		t.Errorf("expected default region, got %q", order.Customer.Region)
	}

	if len(store.orders) != 1 {
		t.Fatalf("expected exactly one header, got %d", len(store.orders))
	}
	if len(store.lines) != 1 {
		t.Fatalf("expected exactly one line, got %d", len(store.lines))
	}
	line := store.lines[0]
	if line.OrderID != order.ID {
		t.Errorf("line references order %s, want %s", line.OrderID, order.ID)
	}
	if line.ProductName != "Chemise Classique Bleue" || line.Price != 25000 || line.Quantity != 2 {
		t.Errorf("unexpected snapshot: %+v", line)
	}
	if line.Size != "M" || line.Color != "Bleu" {
		t.Errorf("unexpected variant snapshot: %+v", line)
	}

	if !next.IsEmpty() {
		t.Error("cart must be cleared on success")
	}
	if svc.State() != StateSucceeded {
		t.Errorf("expected Succeeded, got %s", svc.State())
	}
}

func TestSubmit_SubtotalLinesInvariant(t *testing.T) {
	store := &mockStore{}
	svc := NewCheckoutService(store, newMockCache())

	p := standardProduct()
	other := bulkProduct()
	cart, _ := domain.Cart{}.Add(p, p.Variants[0], 3)
	cart, _ = cart.Add(other, other.Variants[0], 20)

	order, _, err := svc.Submit(context.Background(), "sub-inv", cart, validCustomer(), standardShipping())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	var sum int64
	for _, l := range store.lines {
		sum += l.Price * int64(l.Quantity)
	}
	if sum != order.Subtotal {
		t.Errorf("sum of line totals %d must equal subtotal %d", sum, order.Subtotal)
	}
}

func TestSubmit_ValidationAbortsBeforeWrites(t *testing.T) {
	store := &mockStore{}
	cache := newMockCache()
	svc := NewCheckoutService(store, cache)

	b := bulkProduct()
	cart, _ := domain.Cart{}.Add(b, b.Variants[0], 10)

	_, next, err := svc.Submit(context.Background(), "sub-2", cart, validCustomer(), standardShipping())
	vErr := violationsOf(t, err)
	if !vErr.Has(ViolationWholesaleMinimumNotMet) {
		t.Error("expected wholesale_minimum_not_met")
	}

	if len(store.orders) != 0 || len(store.lines) != 0 {
		t.Error("no write may be attempted on validation failure")
	}
	if len(next.Lines) != 1 {
		t.Errorf("cart must keep its line, got %d", len(next.Lines))
	}
	if cache.held("submission:sub-2") {
		t.Error("no idempotency key may be reserved on validation failure")
	}
	if svc.State() != StateIdle {
		t.Errorf("validation failure returns to Idle, got %s", svc.State())
	}
}

func TestSubmit_HeaderWriteFailed(t *testing.T) {
	store := &mockStore{headerErr: errors.New("backend rejected")}
	cache := newMockCache()
	svc := NewCheckoutService(store, cache)

	cart := filledCart(t)
	_, next, err := svc.Submit(context.Background(), "sub-3", cart, validCustomer(), standardShipping())
	if !errors.Is(err, ErrOrderHeaderWriteFailed) {
		t.Errorf("expected ErrOrderHeaderWriteFailed, got: %v", err)
	}

	if len(store.orders) != 0 || len(store.lines) != 0 {
		t.Error("nothing may persist after a header failure")
	}
	if len(next.Lines) != 1 {
		t.Error("cart must be left untouched for retry")
	}
	if cache.held("submission:sub-3") {
		t.Error("idempotency key must be released so the shopper can retry")
	}
	if svc.State() != StateFailed {
		t.Errorf("expected Failed, got %s", svc.State())
	}

	// Retry with a fresh submission id succeeds.
	store.headerErr = nil
	if _, _, err := svc.Submit(context.Background(), "sub-3b", next, validCustomer(), standardShipping()); err != nil {
		t.Errorf("retry after header failure must work, got: %v", err)
	}
}

func TestSubmit_LineWriteFailureLeavesOrphanHeader(t *testing.T) {
	store := &mockStore{linesErr: errors.New("backend rejected")}
	cache := newMockCache()
	svc := NewCheckoutService(store, cache)

	cart := filledCart(t)
	_, next, err := svc.Submit(context.Background(), "sub-4", cart, validCustomer(), standardShipping())
	if !errors.Is(err, ErrOrderLinesWriteFailed) {
		t.Errorf("expected ErrOrderLinesWriteFailed, got: %v", err)
	}

	// The header persists with no lines: the accepted partial-write
	// hazard, cleaned up out-of-band.
	if len(store.orders) != 1 {
		t.Errorf("header must persist, got %d", len(store.orders))
	}
	if len(store.lines) != 0 {
		t.Errorf("no lines may persist, got %d", len(store.lines))
	}
	if len(next.Lines) != 1 {
		t.Error("cart must not be cleared")
	}
	if svc.State() != StateFailed {
		t.Errorf("expected Failed, got %s", svc.State())
	}
}

func TestSubmit_DuplicateSubmission(t *testing.T) {
	store := &mockStore{}
	svc := NewCheckoutService(store, newMockCache())

	cart := filledCart(t)
	if _, _, err := svc.Submit(context.Background(), "sub-5", cart, validCustomer(), standardShipping()); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, _, err := svc.Submit(context.Background(), "sub-5", cart, validCustomer(), standardShipping())
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("expected ErrDuplicateSubmission, got: %v", err)
	}
	if len(store.orders) != 1 {
		t.Errorf("duplicate must not create a second header, got %d", len(store.orders))
	}
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	gate := make(chan struct{})
	store := &mockStore{headerGate: gate}
	svc := NewCheckoutService(store, newMockCache())

	cart := filledCart(t)

	done := make(chan error, 1)
	go func() {
		_, _, err := svc.Submit(context.Background(), "sub-6", cart, validCustomer(), standardShipping())
		done <- err
	}()

	// Wait until the first submission is blocked inside the header write.
	for svc.State() != StateSubmitting {
		time.Sleep(time.Millisecond)
	}

	_, _, err := svc.Submit(context.Background(), "sub-7", cart, validCustomer(), standardShipping())
	if !errors.Is(err, ErrSubmissionInProgress) {
		t.Errorf("expected ErrSubmissionInProgress, got: %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Errorf("first submission should succeed, got: %v", err)
	}
}

func TestReset(t *testing.T) {
	store := &mockStore{}
	svc := NewCheckoutService(store, newMockCache())

	cart := filledCart(t)
	if _, _, err := svc.Submit(context.Background(), "sub-8", cart, validCustomer(), standardShipping()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if svc.State() != StateSucceeded {
		t.Fatalf("expected Succeeded, got %s", svc.State())
	}

	svc.Reset()
	if svc.State() != StateIdle {
		t.Errorf("expected Idle after reset, got %s", svc.State())
	}
}
