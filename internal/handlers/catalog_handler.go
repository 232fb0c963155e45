package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"footballshop/internal/services"
)

// CatalogHandler handles HTTP requests for the product catalog.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/categories", h.HandleListCategories)
}

// HandleListProducts refreshes and returns the product list for the
// given search text and category.
func (h *CatalogHandler) HandleListProducts(c *fiber.Ctx) error {
	q := c.Query("q")
	category := c.Query("category")

	items, err := h.service.Refresh(c.Context(), q, category)
	if err != nil {
		// A superseded query means a newer one already applied its
		// result; answer with the current list instead of an error.
		if errors.Is(err, services.ErrStaleQuery) {
			items = h.service.Products()
			return c.JSON(fiber.Map{
				"items": items,
				"count": len(items),
			})
		}
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// HandleListCategories returns the distinct categories of the current
// product list, for the storefront's filter chips.
func (h *CatalogHandler) HandleListCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": h.service.Categories(),
	})
}
