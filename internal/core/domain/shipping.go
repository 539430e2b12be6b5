package domain

// ShippingOption is a flat-priced delivery choice. WholesaleOnly
// restricts an option to carts that contain bulk items.
type ShippingOption struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	EstimatedDays int    `json:"estimated_days"`
	WholesaleOnly bool   `json:"wholesale_only,omitempty"`
}

// ShippingOptions is the static delivery catalog.
var ShippingOptions = []ShippingOption{
	{ID: "standard-dakar", Name: "Livraison Standard Dakar", Price: 2000, EstimatedDays: 2},
	{ID: "express-dakar", Name: "Livraison Express Dakar", Price: 3500, EstimatedDays: 1},
	{ID: "regions", Name: "Livraison Régions", Price: 5000, EstimatedDays: 3},
	{ID: "continental-china", Name: "Livraison Continentale depuis la Chine par kg", Price: 15000, EstimatedDays: 15, WholesaleOnly: true},
}

// ShippingOptionsFor returns the options offered for the given cart:
// wholesale-only options when the cart contains bulk items, every
// option otherwise.
func ShippingOptionsFor(cart Cart) []ShippingOption {
	if !cart.HasBulkLines() {
		return ShippingOptions
	}
	var out []ShippingOption
	for _, opt := range ShippingOptions {
		if opt.WholesaleOnly {
			out = append(out, opt)
		}
	}
	return out
}

// ShippingOptionByID looks up an option in the static catalog.
func ShippingOptionByID(id string) (ShippingOption, bool) {
	for _, opt := range ShippingOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return ShippingOption{}, false
}

type PaymentMethodType string

const (
	PaymentMobile PaymentMethodType = "mobile"
	PaymentCard   PaymentMethodType = "card"
	PaymentCash   PaymentMethodType = "cash"
)

// PaymentMethod is a display label only; the payment step is a redirect
// to an external page and a no-op to this engine.
type PaymentMethod struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Type PaymentMethodType `json:"type"`
}

var PaymentMethods = []PaymentMethod{
	{ID: "orange-money", Name: "Orange Money", Type: PaymentMobile},
	{ID: "wave", Name: "Wave", Type: PaymentMobile},
	{ID: "free-money", Name: "Free Money", Type: PaymentMobile},
	{ID: "card", Name: "Carte Bancaire", Type: PaymentCard},
	{ID: "cash", Name: "Paiement à la livraison", Type: PaymentCash},
}
