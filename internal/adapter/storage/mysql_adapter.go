package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mbayend/sama-boutique/internal/core/domain"
)

// MySQLAdapter implements the record store over the products, orders
// and order_items tables. Variant and image lists are stored as JSON
// columns, matching the upstream record store's schema.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) SelectProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, description, price, category, images, variants, created_at, updated_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (m *MySQLAdapter) SelectProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, category, images, variants, created_at, updated_at
		FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var images, variants []byte
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
		&images, &variants, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, err
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}
	p.Images = parseImages(images)
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &p.Variants); err != nil {
			return domain.Product{}, fmt.Errorf("decode variants for product %s: %w", p.ID, err)
		}
	}
	return p, nil
}

// parseImages tolerates legacy rows where the column holds a single
// bare URL instead of a JSON array.
func parseImages(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var images []string
	if err := json.Unmarshal(raw, &images); err == nil {
		return images
	}
	return []string{string(raw)}
}

func (m *MySQLAdapter) InsertProduct(ctx context.Context, p domain.Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	variants, err := json.Marshal(p.Variants)
	if err != nil {
		return fmt.Errorf("encode variants: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, category, images, variants, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Price, p.Category, images, variants, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteProduct(ctx context.Context, id string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) SelectOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, phone, address, city, region,
		       shipping_option, subtotal, shipping_cost, total, status, created_at, updated_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	index := make(map[string]int)
	for rows.Next() {
		var o domain.Order
		var email sql.NullString
		err := rows.Scan(&o.ID, &o.Customer.FirstName, &o.Customer.LastName, &email,
			&o.Customer.Phone, &o.Customer.Address, &o.Customer.City, &o.Customer.Region,
			&o.ShippingOption, &o.Subtotal, &o.ShippingCost, &o.Total, &o.Status,
			&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Customer.Email = email.String
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lineRows, err := m.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, product_image,
		       variant_size, variant_color, price, quantity, created_at
		FROM order_items ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var l domain.OrderLine
		var image sql.NullString
		err := lineRows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &image,
			&l.Size, &l.Color, &l.Price, &l.Quantity, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		l.ProductImage = image.String
		if i, ok := index[l.OrderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	return orders, lineRows.Err()
}

func (m *MySQLAdapter) InsertOrder(ctx context.Context, o domain.Order) error {
	var email sql.NullString
	if o.Customer.Email != "" {
		email = sql.NullString{String: o.Customer.Email, Valid: true}
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO orders (id, first_name, last_name, email, phone, address, city, region,
		                    shipping_option, subtotal, shipping_cost, total, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Customer.FirstName, o.Customer.LastName, email, o.Customer.Phone,
		o.Customer.Address, o.Customer.City, o.Customer.Region, o.ShippingOption,
		o.Subtotal, o.ShippingCost, o.Total, o.Status, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// InsertOrderLines writes the line batch in one transaction. The batch
// is atomic with itself but not with the header insert; the gap between
// the two is the documented partial-write hazard.
func (m *MySQLAdapter) InsertOrderLines(ctx context.Context, lines []domain.OrderLine) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, l := range lines {
		var image sql.NullString
		if l.ProductImage != "" {
			image = sql.NullString{String: l.ProductImage, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, product_image,
			                         variant_size, variant_color, price, quantity, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.OrderID, l.ProductID, l.ProductName, image,
			l.Size, l.Color, l.Price, l.Quantity, l.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return tx.Commit()
}

func (m *MySQLAdapter) DeleteOrderLines(ctx context.Context, orderID string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteOrder(ctx context.Context, orderID string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) SelectOrphanOrderIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT o.id FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.id IS NULL AND o.created_at < ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query orphan orders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan orphan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
