package services

import (
	"log"
	"strings"
	"sync"

	"footballshop/internal/models"
	"footballshop/internal/repositories"
)

// CartService owns the client cart: line items plus an optional coupon.
// All mutations serialize under a mutex, so two near-simultaneous adds
// for the same product cannot drop an increment, and every mutation
// persists the new state under a fixed store key so a restart restores
// the identical cart.
//
// Persistence is best effort: a failed save is logged and does not
// block further cart operations.
type CartService struct {
	repo     repositories.CartRepository
	storeKey string

	mu    sync.Mutex
	state models.CartState
}

// NewCartService creates a CartService, restoring any snapshot
// previously persisted under storeKey. A load failure starts an empty
// cart rather than failing startup.
func NewCartService(repo repositories.CartRepository, storeKey string) *CartService {
	s := &CartService{
		repo:     repo,
		storeKey: storeKey,
	}
	state, err := repo.Load(storeKey)
	if err != nil {
		log.Printf("Failed to restore cart %s, starting empty: %v", storeKey, err)
		return s
	}
	s.state = *state
	return s
}

// Add puts qty units of the product in the cart. If a line for the
// product already exists its quantity is incremented and its display
// fields refreshed from the new payload; otherwise a new line is
// appended. A qty below 1 counts as 1.
func (s *CartService) Add(product models.Product, qty int) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Lines {
		if s.state.Lines[i].ID == product.ID {
			newQty := s.state.Lines[i].Qty + qty
			s.state.Lines[i] = models.CartLine{Product: product, Qty: newQty}
			s.persistLocked()
			return
		}
	}
	s.state.Lines = append(s.state.Lines, models.CartLine{Product: product, Qty: qty})
	s.persistLocked()
}

// Remove deletes the line for productID. Removing an absent product is
// a no-op.
func (s *CartService) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Lines {
		if s.state.Lines[i].ID == productID {
			s.state.Lines = append(s.state.Lines[:i], s.state.Lines[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// SetQty sets the quantity for the matching line, clamped to a minimum
// of 1 so a cleared quantity field can never produce a zero or negative
// line. Setting qty on an absent product is a no-op.
func (s *CartService) SetQty(productID string, qty int) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Lines {
		if s.state.Lines[i].ID == productID {
			s.state.Lines[i].Qty = qty
			s.persistLocked()
			return
		}
	}
}

// SetCoupon stores the trimmed coupon code; an empty (or all-space)
// code clears the coupon. Unknown codes are kept but have no discount
// effect.
func (s *CartService) SetCoupon(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Coupon = strings.TrimSpace(code)
	s.persistLocked()
}

// Clear resets the cart to no lines and no coupon. It is idempotent and
// safe on an already-empty cart.
func (s *CartService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = models.CartState{}
	s.persistLocked()
}

// Subtotal returns the sum of price times quantity over all lines.
func (s *CartService) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Subtotal()
}

// Total returns the subtotal with the discount coupon applied.
func (s *CartService) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Total()
}

// ItemCount returns the total number of units in the cart.
func (s *CartService) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ItemCount()
}

// Snapshot returns a deep copy of the current cart state.
func (s *CartService) Snapshot() models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// persistLocked saves the current state under the store key. Callers
// must hold s.mu.
func (s *CartService) persistLocked() {
	if err := s.repo.Save(s.storeKey, &s.state); err != nil {
		log.Printf("Warning: failed to persist cart %s: %v", s.storeKey, err)
	}
}
