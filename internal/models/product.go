package models

// Product represents a product in the store catalog.
// The catalog is owned by the external shop API; products are never
// persisted locally, only carried into cart lines. Prices are integer
// currency units (COP).
type Product struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Price    int64  `json:"price" validate:"gte=0"`
	Category string `json:"category,omitempty"`
	Img      string `json:"img,omitempty"`
	Stock    int    `json:"stock,omitempty" validate:"gte=0"`
}
