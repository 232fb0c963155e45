package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"footballshop/internal/models"
)

// ErrEmptyCart is returned when checkout is started with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutStarter is the part of the shop API the initiator needs.
type CheckoutStarter interface {
	StartCheckout(ctx context.Context, request models.CheckoutRequest) (*models.CheckoutStartResponse, error)
}

// CheckoutOutcome is the actionable next step of a checkout attempt.
// Exactly one of the URLs is set: RedirectURL hands the user to the
// payment gateway, FallbackURL opens the manual WhatsApp order channel.
type CheckoutOutcome struct {
	RedirectURL string `json:"payment_url,omitempty"`
	FallbackURL string `json:"fallback_url,omitempty"`
}

// CheckoutService turns the current cart into a checkout-start request.
// A checkout attempt never clears the cart: the user may abandon or
// fail payment at the gateway, and clearing is deferred to the
// confirmed return. Failures are terminal for the attempt and answered
// with the fallback channel instead of an error, so checkout always
// produces an actionable next step.
type CheckoutService struct {
	cart           *CartService
	api            CheckoutStarter
	validate       *validator.Validate
	whatsappPhone  string
	deliveryCity   string
	deliveryMethod string
}

// NewCheckoutService creates a new CheckoutService. Delivery metadata is
// fixed from configuration for every request.
func NewCheckoutService(cart *CartService, api CheckoutStarter, whatsappPhone, deliveryCity, deliveryMethod string) *CheckoutService {
	return &CheckoutService{
		cart:           cart,
		api:            api,
		validate:       validator.New(),
		whatsappPhone:  whatsappPhone,
		deliveryCity:   deliveryCity,
		deliveryMethod: deliveryMethod,
	}
}

// Start snapshots the cart, submits it to the checkout-start endpoint
// and returns where to send the user next. No retry is attempted: any
// request failure, non-success status or missing payment URL falls back
// to the manual order link built from the exact snapshot taken here.
func (s *CheckoutService) Start(ctx context.Context) (*CheckoutOutcome, error) {
	snapshot := s.cart.Snapshot()
	if len(snapshot.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	request := models.CheckoutRequest{
		Items:          make([]models.CheckoutItem, 0, len(snapshot.Lines)),
		DeliveryCity:   s.deliveryCity,
		DeliveryMethod: s.deliveryMethod,
	}
	for _, line := range snapshot.Lines {
		request.Items = append(request.Items, models.CheckoutItem{ID: line.ID, Qty: line.Qty})
	}
	if snapshot.Coupon != "" {
		coupon := snapshot.Coupon
		request.Coupon = &coupon
	}

	if err := s.validate.Struct(request); err != nil {
		return nil, fmt.Errorf("invalid checkout request: %w", err)
	}

	resp, err := s.api.StartCheckout(ctx, request)
	if err != nil {
		log.Printf("Checkout start failed, falling back to manual order: %v", err)
		return &CheckoutOutcome{FallbackURL: s.FallbackLink(snapshot)}, nil
	}
	if resp.PaymentURL == "" {
		log.Printf("Checkout start returned no payment URL, falling back to manual order")
		return &CheckoutOutcome{FallbackURL: s.FallbackLink(snapshot)}, nil
	}

	return &CheckoutOutcome{RedirectURL: resp.PaymentURL}, nil
}

// FallbackLink builds the manual WhatsApp order link for a cart
// snapshot: one bullet per line with name, quantity and line total,
// the coupon when set, and the current total.
func (s *CheckoutService) FallbackLink(snapshot models.CartState) string {
	var b strings.Builder
	b.WriteString("Pedido:")
	for _, line := range snapshot.Lines {
		b.WriteString(fmt.Sprintf("\n• %s x%d = $%s", line.Name, line.Qty, FormatPrice(line.LineTotal())))
	}
	if snapshot.Coupon != "" {
		b.WriteString("\nCupón: " + snapshot.Coupon)
	}
	b.WriteString("\nTotal: $" + FormatPrice(snapshot.Total()))

	return fmt.Sprintf("https://wa.me/%s?text=%s", s.whatsappPhone, url.QueryEscape(b.String()))
}

// FormatPrice renders an integer COP amount with dot thousands
// separators, e.g. 200000 -> "200.000".
func FormatPrice(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	return sign + strings.Join(parts, ".")
}
