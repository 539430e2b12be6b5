package service

import (
	"fmt"
	"strings"

	"github.com/mbayend/sama-boutique/internal/core/domain"
)

// WholesaleMinimumQuantity is the policy floor for bulk-category lines.
const WholesaleMinimumQuantity = 15

type ViolationCode string

const (
	ViolationEmptyCart              ViolationCode = "empty_cart"
	ViolationMissingRequiredField   ViolationCode = "missing_required_field"
	ViolationWholesaleMinimumNotMet ViolationCode = "wholesale_minimum_not_met"
	ViolationInsufficientStock      ViolationCode = "insufficient_stock"
)

// Violation is a single order-policy failure. LineID is set for
// line-scoped violations, Field for missing customer fields.
type Violation struct {
	Code    ViolationCode `json:"code"`
	Field   string        `json:"field,omitempty"`
	LineID  string        `json:"line_id,omitempty"`
	Message string        `json:"message"`
}

// ValidationError carries every violation found, not merely the first,
// so callers can report all problems at once.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "order validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether any violation carries the given code.
func (e *ValidationError) Has(code ViolationCode) bool {
	for _, v := range e.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// ValidateOrder runs the pre-submission policy checks: non-empty cart,
// required customer fields, wholesale minimum quantity, and a stock
// sufficiency re-check against the most recently fetched figures. It is
// pure and never touches the cart. Returns nil when the order may be
// submitted, otherwise a *ValidationError with the full violation set.
func ValidateOrder(cart domain.Cart, info domain.CustomerInfo, shipping domain.ShippingOption) error {
	var violations []Violation

	if cart.IsEmpty() {
		violations = append(violations, Violation{
			Code:    ViolationEmptyCart,
			Message: "cart is empty",
		})
	}

	required := []struct {
		field string
		value string
	}{
		{"first_name", info.FirstName},
		{"last_name", info.LastName},
		{"phone", info.Phone},
		{"address", info.Address},
		{"city", info.City},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			violations = append(violations, Violation{
				Code:    ViolationMissingRequiredField,
				Field:   r.field,
				Message: fmt.Sprintf("required field %s is missing", r.field),
			})
		}
	}

	for _, line := range cart.Lines {
		if line.Product.IsBulk() && line.Quantity < WholesaleMinimumQuantity {
			violations = append(violations, Violation{
				Code:   ViolationWholesaleMinimumNotMet,
				LineID: line.ID,
				Message: fmt.Sprintf("wholesale item %q requires at least %d units, got %d",
					line.Product.Name, WholesaleMinimumQuantity, line.Quantity),
			})
		}
		if line.Quantity > line.Variant.Stock {
			violations = append(violations, Violation{
				Code:   ViolationInsufficientStock,
				LineID: line.ID,
				Message: fmt.Sprintf("item %q exceeds available stock: want %d, have %d",
					line.Product.Name, line.Quantity, line.Variant.Stock),
			})
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
