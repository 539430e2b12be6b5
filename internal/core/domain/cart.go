package domain

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrAlreadyInCart      = errors.New("product variant already in cart")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrVariantUnavailable = errors.New("variant unavailable")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
)

// CartLine is one product+variant+quantity entry. Its ID is generated at
// add time and is distinct from product/variant identity; a variant swap
// regenerates it.
type CartLine struct {
	ID       string
	Product  Product
	Variant  Variant
	Quantity int
}

// Cart is the shopper's in-progress selection. Lines keep insertion
// order, which is also display order. All operations return a new Cart
// and leave the receiver untouched, so a failed operation never
// corrupts the current state.
type Cart struct {
	Lines []CartLine
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the cart line with the given identity.
func (c Cart) Line(lineID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Add appends a new line for the given product variant. At most one line
// per (product, variant) pair is allowed; a duplicate add is rejected
// with ErrAlreadyInCart and the cart is unchanged. The quantity is
// checked against the variant's stock at add time.
func (c Cart) Add(product Product, variant Variant, quantity int) (Cart, error) {
	if quantity <= 0 {
		return c, ErrInvalidQuantity
	}
	for _, l := range c.Lines {
		if l.Product.ID == product.ID && l.Variant.ID == variant.ID {
			return c, ErrAlreadyInCart
		}
	}
	if quantity > variant.Stock {
		return c, ErrInsufficientStock
	}
	lines := make([]CartLine, len(c.Lines), len(c.Lines)+1)
	copy(lines, c.Lines)
	lines = append(lines, CartLine{
		ID:       uuid.NewString(),
		Product:  product,
		Variant:  variant,
		Quantity: quantity,
	})
	return Cart{Lines: lines}, nil
}

// UpdateQuantity replaces the line's quantity. A quantity of zero or
// less removes the line. Live stock is not re-checked here; the ceiling
// is enforced at the UI edge and again by order validation.
func (c Cart) UpdateQuantity(lineID string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(lineID)
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Quantity = quantity
		}
	}
	return Cart{Lines: lines}
}

// Remove deletes the line. Removing an absent line is a no-op.
func (c Cart) Remove(lineID string) Cart {
	lines := make([]CartLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.ID != lineID {
			lines = append(lines, l)
		}
	}
	return Cart{Lines: lines}
}

// SwapVariant moves a line to the variant on the same product matching
// the requested (size, color). It fails with ErrVariantUnavailable when
// no such variant exists or its stock cannot cover the line's current
// quantity. A successful swap is remove-then-add: the line gets a fresh
// identity and moves to the end of the cart.
func (c Cart) SwapVariant(lineID, size, color string) (Cart, error) {
	line, ok := c.Line(lineID)
	if !ok {
		return c, nil
	}
	variant, ok := line.Product.FindVariant(size, color)
	if !ok || variant.Stock < line.Quantity {
		return c, ErrVariantUnavailable
	}
	next := c.Remove(lineID)
	next.Lines = append(next.Lines, CartLine{
		ID:       uuid.NewString(),
		Product:  line.Product,
		Variant:  variant,
		Quantity: line.Quantity,
	})
	return next, nil
}

// Subtotal is recomputed on every read, never cached across mutations.
func (c Cart) Subtotal() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.Product.Price * int64(l.Quantity)
	}
	return total
}

// Total is the subtotal plus the selected shipping option's flat price.
func (c Cart) Total(shipping ShippingOption) int64 {
	return c.Subtotal() + shipping.Price
}

// HasBulkLines reports whether any line is a wholesale item.
func (c Cart) HasBulkLines() bool {
	for _, l := range c.Lines {
		if l.Product.IsBulk() {
			return true
		}
	}
	return false
}
