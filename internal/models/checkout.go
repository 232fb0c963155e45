package models

// CheckoutItem is one {id, qty} pair in a checkout request.
type CheckoutItem struct {
	ID  string `json:"id" validate:"required"`
	Qty int    `json:"qty" validate:"gte=1"`
}

// CheckoutRequest is the point-in-time cart snapshot submitted to the
// shop API's checkout-start endpoint. It is derived from CartState at
// the moment checkout is initiated and never persisted.
type CheckoutRequest struct {
	Items          []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	Coupon         *string        `json:"coupon"`
	DeliveryCity   string         `json:"delivery_city" validate:"required"`
	DeliveryMethod string         `json:"delivery_method" validate:"required,oneof=standard express"`
}

// CheckoutStartResponse is the shop API's answer to checkout-start.
// PaymentURL may be empty, which sends the caller down the fallback path.
type CheckoutStartResponse struct {
	PaymentURL string `json:"payment_url,omitempty"`
}
