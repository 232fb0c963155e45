package models

import "time"

// OrderStatusSuccess is the status sentinel the payment gateway puts in
// the return-navigation query string for a completed payment.
const OrderStatusSuccess = "success"

// OrderItem represents a single item within a settled order, as priced
// by the server at checkout time.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Qty       int    `json:"qty"`
	Line      int64  `json:"line"`
}

// Order is the server's settled record of a purchase. It is read-only
// here: subtotal, discount, shipping and total are the server's truth
// (server-side coupon validation, shipping tables and tax may differ
// from the client's pre-checkout estimate) and are never recomputed.
type Order struct {
	ID          string      `json:"id"`
	ReceiptCode string      `json:"receipt_code,omitempty"`
	Subtotal    int64       `json:"subtotal"`
	Discount    int64       `json:"discount"`
	Shipping    int64       `json:"shipping"`
	Total       int64       `json:"total"`
	Status      string      `json:"status"`
	CreatedAt   *time.Time  `json:"created_at,omitempty"`
	PaidAt      *time.Time  `json:"paid_at,omitempty"`
	OrderItems  []OrderItem `json:"order_items,omitempty"`
}
