package models

import "math"

// DiscountCoupon is the only coupon code with a defined effect: 10% off
// the subtotal. Any other code is stored but has no discount effect.
const DiscountCoupon = "HOLA10"

// CartLine is a product in the cart together with its quantity.
// A cart holds at most one line per product ID; Qty is always >= 1.
type CartLine struct {
	Product
	Qty int `json:"qty" validate:"gte=1"`
}

// LineTotal returns the price of this line (unit price times quantity).
func (l CartLine) LineTotal() int64 {
	return l.Price * int64(l.Qty)
}

// CartState is the full client-owned cart: lines in insertion order plus
// an optional coupon code. It is the unit of persistence for the cart
// store and the snapshot handed to the checkout initiator.
type CartState struct {
	Lines  []CartLine `json:"items"`
	Coupon string     `json:"coupon,omitempty"`
}

// Subtotal sums price times quantity over all lines.
func (s CartState) Subtotal() int64 {
	var sum int64
	for _, l := range s.Lines {
		sum += l.LineTotal()
	}
	return sum
}

// Total applies the discount coupon to the subtotal. With DiscountCoupon
// set the total is the subtotal times 0.9, rounded to the nearest
// currency unit; any other (or absent) coupon leaves the subtotal as is.
func (s CartState) Total() int64 {
	sub := s.Subtotal()
	if s.Coupon == DiscountCoupon {
		return int64(math.Round(float64(sub) * 0.9))
	}
	return sub
}

// ItemCount returns the total number of units across all lines.
func (s CartState) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Qty
	}
	return n
}

// Clone returns a deep copy so callers can hold a snapshot without
// aliasing the store's line slice.
func (s CartState) Clone() CartState {
	out := CartState{Coupon: s.Coupon}
	if len(s.Lines) > 0 {
		out.Lines = make([]CartLine, len(s.Lines))
		copy(out.Lines, s.Lines)
	}
	return out
}
