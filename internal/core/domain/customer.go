package domain

// DefaultRegion is the country-level placeholder used when the shopper
// leaves the region blank.
const DefaultRegion = "Sénégal"

// CustomerInfo carries the delivery contact for an order. First name,
// last name, phone, address and city are mandatory at validation time;
// email and region are optional.
type CustomerInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Region    string `json:"region"`
}

// WithDefaults fills optional fields that default, currently only the
// region.
func (c CustomerInfo) WithDefaults() CustomerInfo {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	return c
}
