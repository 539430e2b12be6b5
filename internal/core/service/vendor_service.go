package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mbayend/sama-boutique/internal/core/domain"
	"github.com/mbayend/sama-boutique/internal/port"
)

// DeliveryFee is the flat per-order fee added when displaying an
// order-level total. The stored order total deliberately excludes it;
// this mirrors the observed behavior and is flagged for product-owner
// clarification rather than fixed here.
const DeliveryFee int64 = 1000

// OrderGroups buckets orders by the calendar period of their creation,
// each order in exactly the first bucket it matches. Fetch order
// (newest first) is preserved inside every bucket.
type OrderGroups struct {
	Today     []domain.Order
	ThisWeek  []domain.Order
	ThisMonth []domain.Order
	ThisYear  []domain.Order
	Older     []domain.Order
}

type VendorStats struct {
	TotalProducts   int   `json:"total_products"`
	TotalOrders     int   `json:"total_orders"`
	TotalRevenue    int64 `json:"total_revenue"`
	TotalCategories int   `json:"total_categories"`
}

// VendorService is the vendor-side read projection over persisted
// orders and products, plus the order/orphan cleanup paths.
type VendorService struct {
	store     port.StoreRepository
	weekStart time.Weekday
}

func NewVendorService(store port.StoreRepository, weekStart time.Weekday) *VendorService {
	return &VendorService{store: store, weekStart: weekStart}
}

// ListOrders returns persisted orders newest first with lines attached.
func (s *VendorService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.store.SelectOrders(ctx)
}

// GroupOrders places each order into the first matching period bucket,
// evaluated against now: today, this week, this month, this year,
// older.
func (s *VendorService) GroupOrders(orders []domain.Order, now time.Time) OrderGroups {
	var groups OrderGroups
	for _, o := range orders {
		created := o.CreatedAt
		switch {
		case sameCalendarDay(created, now):
			groups.Today = append(groups.Today, o)
		case s.inCurrentWeek(created, now):
			groups.ThisWeek = append(groups.ThisWeek, o)
		case created.Month() == now.Month() && created.Year() == now.Year():
			groups.ThisMonth = append(groups.ThisMonth, o)
		case created.Year() == now.Year():
			groups.ThisYear = append(groups.ThisYear, o)
		default:
			groups.Older = append(groups.Older, o)
		}
	}
	return groups
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// inCurrentWeek checks membership in the calendar week containing now,
// where the week begins on the configured start day.
func (s *VendorService) inCurrentWeek(t, now time.Time) bool {
	offset := (int(now.Weekday()) - int(s.weekStart) + 7) % 7
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 7)
	return !t.Before(start) && t.Before(end)
}

// DisplayTotal is the stored total plus the flat delivery fee.
func (s *VendorService) DisplayTotal(o domain.Order) int64 {
	return o.Total + DeliveryFee
}

// Stats aggregates the dashboard counters. Revenue sums display totals,
// so it includes the delivery fee once per order.
func (s *VendorService) Stats(products []domain.Product, orders []domain.Order) VendorStats {
	var revenue int64
	for _, o := range orders {
		revenue += s.DisplayTotal(o)
	}
	categories := make(map[string]bool)
	for _, p := range products {
		categories[p.Category] = true
	}
	return VendorStats{
		TotalProducts:   len(products),
		TotalOrders:     len(orders),
		TotalRevenue:    revenue,
		TotalCategories: len(categories),
	}
}

// DeleteOrder removes an order, lines first so a failure between the
// two deletes cannot strand lines without a header.
func (s *VendorService) DeleteOrder(ctx context.Context, orderID string) error {
	if err := s.store.DeleteOrderLines(ctx, orderID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// ReconcileOrphans deletes order headers older than the cutoff that
// have no lines, the residue left when a line-batch write failed after
// a successful header write. Returns the IDs it removed.
func (s *VendorService) ReconcileOrphans(ctx context.Context, cutoff time.Time) ([]string, error) {
	ids, err := s.store.SelectOrphanOrderIDs(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("select orphan orders: %w", err)
	}

	var removed []string
	for _, id := range ids {
		if err := s.store.DeleteOrder(ctx, id); err != nil {
			log.Printf("vendor: failed to remove orphan order %s: %v", id, err)
			continue
		}
		removed = append(removed, id)
	}
	return removed, nil
}
