package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is created only by a successful submission. Total excludes the
// flat delivery fee the vendor view adds at display time.
type Order struct {
	ID             string       `json:"id"`
	Customer       CustomerInfo `json:"customer"`
	ShippingOption string       `json:"shipping_option"`
	Subtotal       int64        `json:"subtotal"`
	ShippingCost   int64        `json:"shipping_cost"`
	Total          int64        `json:"total"`
	Status         OrderStatus  `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Lines          []OrderLine  `json:"lines"`
}

// OrderLine snapshots the product and variant at submission time, so
// later catalog edits cannot alter a persisted order.
type OrderLine struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductImage string    `json:"product_image,omitempty"`
	Size         string    `json:"size"`
	Color        string    `json:"color"`
	Price        int64     `json:"price"`
	Quantity     int       `json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
}
