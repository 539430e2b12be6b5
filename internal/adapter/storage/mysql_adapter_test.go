package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/mbayend/sama-boutique/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/boutique?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func testOrder() domain.Order {
	now := time.Now().Truncate(time.Second)
	return domain.Order{
		ID: "test-order-" + uuid.NewString(),
		Customer: domain.CustomerInfo{
			FirstName: "Awa",
			LastName:  "Diop",
			Phone:     "+221771234567",
			Address:   "Rue 10, Médina",
			City:      "Dakar",
			Region:    domain.DefaultRegion,
		},
		ShippingOption: "Livraison Standard Dakar",
		Subtotal:       50000,
		ShippingCost:   2000,
		Total:          52000,
		Status:         domain.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestProductRoundTrip(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	now := time.Now().Truncate(time.Second)
	product := domain.Product{
		ID:          "test-product-" + uuid.NewString(),
		Name:        "Chemise Test",
		Description: "Chemise de test",
		Price:       25000,
		Category:    "chemises",
		Images:      []string{"https://example.com/a.jpg", "https://example.com/b.jpg"},
		Variants: []domain.Variant{
			{ID: "tv-1", Size: "M", Color: "Bleu", Stock: 10},
			{ID: "tv-2", Size: "L", Color: "Bleu", Stock: 8},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := adapter.InsertProduct(ctx, product); err != nil {
		t.Fatalf("InsertProduct failed: %v", err)
	}
	defer adapter.DeleteProduct(ctx, product.ID)

	got, err := adapter.SelectProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("SelectProduct failed: %v", err)
	}
	if got == nil {
		t.Fatal("product not found after insert")
	}
	if got.Name != product.Name || got.Price != product.Price {
		t.Errorf("unexpected product: %+v", got)
	}
	if len(got.Images) != 2 || got.Images[0] != product.Images[0] {
		t.Errorf("unexpected images: %v", got.Images)
	}
	if len(got.Variants) != 2 || got.Variants[1].Size != "L" || got.Variants[1].Stock != 8 {
		t.Errorf("unexpected variants: %+v", got.Variants)
	}
}

func TestSelectProduct_Absent(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := NewMySQLAdapter(db)
	got, err := adapter.SelectProduct(context.Background(), "no-such-product")
	if err != nil {
		t.Fatalf("SelectProduct failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for absent product, got %+v", got)
	}
}

func TestOrderWithLinesRoundTrip(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	order := testOrder()
	if err := adapter.InsertOrder(ctx, order); err != nil {
		t.Fatalf("InsertOrder failed: %v", err)
	}
	defer adapter.DeleteOrder(ctx, order.ID)

	lines := []domain.OrderLine{{
		ID:           "test-line-" + uuid.NewString(),
		OrderID:      order.ID,
		ProductID:    "prod-1",
		ProductName:  "Chemise Classique Bleue",
		ProductImage: "https://example.com/a.jpg",
		Size:         "M",
		Color:        "Bleu",
		Price:        25000,
		Quantity:     2,
		CreatedAt:    order.CreatedAt,
	}}
	if err := adapter.InsertOrderLines(ctx, lines); err != nil {
		t.Fatalf("InsertOrderLines failed: %v", err)
	}
	defer adapter.DeleteOrderLines(ctx, order.ID)

	orders, err := adapter.SelectOrders(ctx)
	if err != nil {
		t.Fatalf("SelectOrders failed: %v", err)
	}

	var found *domain.Order
	for i := range orders {
		if orders[i].ID == order.ID {
			found = &orders[i]
			break
		}
	}
	if found == nil {
		t.Fatal("order not returned by SelectOrders")
	}
	if found.Total != 52000 || found.Customer.FirstName != "Awa" {
		t.Errorf("unexpected order: %+v", found)
	}
	if len(found.Lines) != 1 || found.Lines[0].ProductName != "Chemise Classique Bleue" {
		t.Errorf("unexpected lines: %+v", found.Lines)
	}
}

func TestSelectOrphanOrderIDs(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	// A header with no lines, created in the past.
	orphan := testOrder()
	orphan.CreatedAt = time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	orphan.UpdatedAt = orphan.CreatedAt
	if err := adapter.InsertOrder(ctx, orphan); err != nil {
		t.Fatalf("InsertOrder failed: %v", err)
	}
	defer adapter.DeleteOrder(ctx, orphan.ID)

	ids, err := adapter.SelectOrphanOrderIDs(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("SelectOrphanOrderIDs failed: %v", err)
	}

	found := false
	for _, id := range ids {
		if id == orphan.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected orphan %s in %v", orphan.ID, ids)
	}
}
