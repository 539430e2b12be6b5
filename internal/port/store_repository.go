package port

import (
	"context"
	"time"

	"github.com/mbayend/sama-boutique/internal/core/domain"
)

// StoreRepository is the external record store owning the product and
// order tables. The store serializes its own writes; this engine only
// sequences the calls.
type StoreRepository interface {
	// SelectProducts returns the catalog ordered by creation time, newest first.
	SelectProducts(ctx context.Context) ([]domain.Product, error)

	// SelectProduct retrieves one product, nil when absent.
	SelectProduct(ctx context.Context, id string) (*domain.Product, error)

	InsertProduct(ctx context.Context, product domain.Product) error

	DeleteProduct(ctx context.Context, id string) error

	// SelectOrders returns persisted orders newest first, each with its
	// lines attached.
	SelectOrders(ctx context.Context) ([]domain.Order, error)

	// InsertOrder writes one order header record.
	InsertOrder(ctx context.Context, order domain.Order) error

	// InsertOrderLines writes the line batch referencing an existing
	// order header.
	InsertOrderLines(ctx context.Context, lines []domain.OrderLine) error

	DeleteOrderLines(ctx context.Context, orderID string) error

	DeleteOrder(ctx context.Context, orderID string) error

	// SelectOrphanOrderIDs lists headers created before the cutoff that
	// have no lines, the residue of a partial submission failure.
	SelectOrphanOrderIDs(ctx context.Context, cutoff time.Time) ([]string, error)
}
