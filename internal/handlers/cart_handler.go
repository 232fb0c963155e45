package handlers

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"footballshop/internal/models"
	"footballshop/internal/services"
)

// CartHandler handles HTTP requests mutating and viewing the cart.
type CartHandler struct {
	cart     *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{
		cart:     cart,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleViewCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id", h.HandleSetQty)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
	cartRoutes.Put("/coupon", h.HandleSetCoupon)
	cartRoutes.Delete("/", h.HandleClearCart)
}

// cartView renders the current cart with its derived totals.
func (h *CartHandler) cartView() fiber.Map {
	snapshot := h.cart.Snapshot()
	return fiber.Map{
		"items":      snapshot.Lines,
		"coupon":     snapshot.Coupon,
		"item_count": snapshot.ItemCount(),
		"subtotal":   snapshot.Subtotal(),
		"total":      snapshot.Total(),
	}
}

// HandleViewCart returns the cart lines, coupon and totals.
func (h *CartHandler) HandleViewCart(c *fiber.Ctx) error {
	return c.JSON(h.cartView())
}

// HandleAddItem adds a product to the cart, merging into an existing
// line for the same product id.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var body struct {
		Product models.Product `json:"product"`
		Qty     int            `json:"qty"`
	}
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing add-item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(body.Product); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	h.cart.Add(body.Product, body.Qty)
	return c.Status(fiber.StatusCreated).JSON(h.cartView())
}

// HandleSetQty sets the quantity of a cart line. Quantities below 1 are
// clamped to 1; the UI's cleared quantity field never empties a line.
func (h *CartHandler) HandleSetQty(c *fiber.Ctx) error {
	var body struct {
		Qty int `json:"qty"`
	}
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing set-qty request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	h.cart.SetQty(c.Params("id"), body.Qty)
	return c.JSON(h.cartView())
}

// HandleRemoveItem deletes a cart line. Removing an absent line is a
// no-op and still answers with the current cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	h.cart.Remove(c.Params("id"))
	return c.JSON(h.cartView())
}

// HandleSetCoupon stores the coupon code; an empty code clears it.
func (h *CartHandler) HandleSetCoupon(c *fiber.Ctx) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing coupon request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	h.cart.SetCoupon(body.Code)
	return c.JSON(h.cartView())
}

// HandleClearCart empties the cart and coupon.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	h.cart.Clear()
	return c.JSON(h.cartView())
}
