package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"footballshop/internal/models"
	"footballshop/internal/repositories"
	"footballshop/internal/services"
	"footballshop/pkg/shopapi"

	"github.com/stretchr/testify/assert"
)

func newCheckoutFixture(t *testing.T, handler http.HandlerFunc) (*services.CheckoutService, *services.CartService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cart := services.NewCartService(repositories.NewMockCartRepository(), "cart-store")
	api := shopapi.NewClient(shopapi.Config{BaseURL: server.URL})
	checkout := services.NewCheckoutService(cart, api, "573136833122", "Bogota", "standard")
	return checkout, cart, server
}

func TestCheckoutService_RedirectsToPaymentURL(t *testing.T) {
	var received models.CheckoutRequest
	checkout, cart, _ := newCheckoutFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/start", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(models.CheckoutStartResponse{PaymentURL: "https://pay.example.com/session/abc"})
	})

	cart.Add(productX, 2)
	cart.SetCoupon("HOLA10")

	outcome, err := checkout.Start(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/session/abc", outcome.RedirectURL)
	assert.Empty(t, outcome.FallbackURL)

	// The request is the exact cart snapshot plus fixed delivery metadata
	assert.Equal(t, []models.CheckoutItem{{ID: "prod-x", Qty: 2}}, received.Items)
	if assert.NotNil(t, received.Coupon) {
		assert.Equal(t, "HOLA10", *received.Coupon)
	}
	assert.Equal(t, "Bogota", received.DeliveryCity)
	assert.Equal(t, "standard", received.DeliveryMethod)

	// Handing off to the gateway must not clear the cart
	assert.Len(t, cart.Snapshot().Lines, 1)
}

func TestCheckoutService_ServerErrorFallsBackToManualOrder(t *testing.T) {
	checkout, cart, _ := newCheckoutFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	cart.Add(productX, 2)
	cart.Add(models.Product{ID: "prod-b", Name: "Balón Profesional", Price: 90000}, 1)
	cart.SetCoupon("HOLA10")

	outcome, err := checkout.Start(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, outcome.RedirectURL)

	link, parseErr := url.Parse(outcome.FallbackURL)
	assert.NoError(t, parseErr)
	assert.Equal(t, "wa.me", link.Host)
	assert.Equal(t, "/573136833122", link.Path)

	// Every line's name, quantity and line total, the coupon, and the
	// exact current total show up in the message
	text := link.Query().Get("text")
	assert.Contains(t, text, "• Camiseta Local 24/25 x2 = $200.000")
	assert.Contains(t, text, "• Balón Profesional x1 = $90.000")
	assert.Contains(t, text, "Cupón: HOLA10")
	assert.Contains(t, text, "Total: $261.000") // round(290000 * 0.9)

	// The fallback path never loses cart data
	assert.Len(t, cart.Snapshot().Lines, 2)
}

func TestCheckoutService_MissingPaymentURLFallsBack(t *testing.T) {
	checkout, cart, _ := newCheckoutFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.CheckoutStartResponse{})
	})

	cart.Add(productX, 1)

	outcome, err := checkout.Start(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, outcome.RedirectURL)
	assert.NotEmpty(t, outcome.FallbackURL)
}

func TestCheckoutService_NetworkFailureFallsBack(t *testing.T) {
	checkout, cart, server := newCheckoutFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close() // every request now fails at the transport

	cart.Add(productX, 1)

	outcome, err := checkout.Start(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, outcome.FallbackURL)

	text, _ := url.QueryUnescape(outcome.FallbackURL)
	assert.Contains(t, text, "Camiseta Local 24/25")
	assert.Contains(t, text, "Total: $100.000")
}

func TestCheckoutService_EmptyCart(t *testing.T) {
	checkout, _, _ := newCheckoutFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty cart must not reach the shop API")
	})

	_, err := checkout.Start(context.Background())
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCheckoutService_NoCouponSendsNull(t *testing.T) {
	var received models.CheckoutRequest
	checkout, cart, _ := newCheckoutFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(models.CheckoutStartResponse{PaymentURL: "https://pay.example.com/x"})
	})

	cart.Add(productX, 1)

	_, err := checkout.Start(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, received.Coupon)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0", services.FormatPrice(0))
	assert.Equal(t, "950", services.FormatPrice(950))
	assert.Equal(t, "90.000", services.FormatPrice(90000))
	assert.Equal(t, "1.200.000", services.FormatPrice(1200000))
	assert.Equal(t, "-15.500", services.FormatPrice(-15500))
}
