package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"footballshop/internal/services"
)

// CheckoutHandler handles checkout initiation and the payment gateway's
// return navigation.
type CheckoutHandler struct {
	checkout         *services.CheckoutService
	cart             *services.CartService
	orders           services.OrderFetcher
	events           services.PaymentEventPublisher
	countdownSeconds int
}

// NewCheckoutHandler creates a new CheckoutHandler. events may be nil
// when no broker is configured.
func NewCheckoutHandler(checkout *services.CheckoutService, cart *services.CartService, orders services.OrderFetcher, events services.PaymentEventPublisher, countdownSeconds int) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:         checkout,
		cart:             cart,
		orders:           orders,
		events:           events,
		countdownSeconds: countdownSeconds,
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Post("/start", h.HandleStartCheckout)
	checkoutRoutes.Get("/return", h.HandleReturn)
}

// HandleStartCheckout submits the current cart to the shop API. The
// response always carries an actionable next step: either the payment
// gateway URL or the manual WhatsApp order link.
func (h *CheckoutHandler) HandleStartCheckout(c *fiber.Ctx) error {
	outcome, err := h.checkout.Start(c.Context())
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Cart is empty, nothing to check out.",
			})
		}
		log.Printf("Error starting checkout: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not start checkout",
			"error":   err.Error(),
		})
	}
	return c.JSON(outcome)
}

// HandleReturn reconciles the gateway's redirect. The status and
// order_id query parameters are the sole input; the cart is cleared on
// a success status regardless of whether the receipt loads.
func (h *CheckoutHandler) HandleReturn(c *fiber.Ctx) error {
	reconciler := services.NewReturnReconciler(h.cart, h.orders, h.events, nil, h.countdownSeconds)
	defer reconciler.Close()

	state := reconciler.Run(c.Context(), c.Query("status"), c.Query("order_id"))

	response := fiber.Map{
		"state":       state,
		"redirect_in": reconciler.SecondsLeft(),
		"home_url":    "/",
	}

	switch state {
	case services.StateReceipt:
		response["order"] = reconciler.Order()
		return c.JSON(response)
	case services.StateAwaitingStatus:
		response["message"] = "Payment was rejected or cancelled."
		return c.JSON(response)
	case services.StateError:
		response["message"] = "Could not load the receipt."
		response["error"] = reconciler.ErrorMessage()
		return c.Status(fiber.StatusBadGateway).JSON(response)
	default:
		return c.JSON(response)
	}
}
