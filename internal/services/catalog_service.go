package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"footballshop/internal/models"
)

// ErrStaleQuery is returned when a catalog refresh finished after a
// newer refresh had already started. Its result must be discarded so a
// slow early query cannot overwrite a faster later query's list.
var ErrStaleQuery = errors.New("catalog query superseded by a newer one")

// ProductLister is the part of the shop API the catalog needs.
type ProductLister interface {
	ListProducts(ctx context.Context, q, category string) ([]models.Product, error)
}

// CatalogService retrieves products from the shop API, falling back to
// a static local product file when the API is unreachable. The catalog
// itself is externally owned; this service only fetches and filters.
type CatalogService struct {
	api       ProductLister
	localFile string

	seq atomic.Uint64

	mu       sync.RWMutex
	products []models.Product
}

// NewCatalogService creates a new CatalogService. localFile is the
// static product list used when the API fetch fails.
func NewCatalogService(api ProductLister, localFile string) *CatalogService {
	return &CatalogService{
		api:       api,
		localFile: localFile,
	}
}

// Refresh fetches the product list for the given search text and
// category and makes it the current list. If a newer Refresh starts
// while this one is in flight, the late result is discarded and
// ErrStaleQuery returned; the current list is left to the newer query.
func (s *CatalogService) Refresh(ctx context.Context, q, category string) ([]models.Product, error) {
	token := s.seq.Add(1)

	items, err := s.api.ListProducts(ctx, q, category)
	if err != nil {
		log.Printf("Shop API catalog fetch failed, using local fallback: %v", err)
		items, err = s.loadLocal()
		if err != nil {
			return nil, fmt.Errorf("catalog unavailable: %w", err)
		}
		items = filterProducts(items, q, category)
	}

	if s.seq.Load() != token {
		return nil, ErrStaleQuery
	}

	s.mu.Lock()
	s.products = items
	s.mu.Unlock()
	return items, nil
}

// Products returns the most recently applied product list.
func (s *CatalogService) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Categories returns the distinct categories of the current list, in
// first-seen order. Products without a category fall under "Otros".
func (s *CatalogService) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var cats []string
	for _, p := range s.products {
		cat := p.Category
		if cat == "" {
			cat = "Otros"
		}
		if !seen[cat] {
			seen[cat] = true
			cats = append(cats, cat)
		}
	}
	return cats
}

// loadLocal reads the static fallback product file.
func (s *CatalogService) loadLocal() ([]models.Product, error) {
	data, err := os.ReadFile(s.localFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read local products file %s: %w", s.localFile, err)
	}
	var items []models.Product
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse local products file %s: %w", s.localFile, err)
	}
	return items, nil
}

// filterProducts applies the API's q/category semantics to a local
// list: category is an exact match, q a case-insensitive substring
// match on name or category.
func filterProducts(items []models.Product, q, category string) []models.Product {
	out := make([]models.Product, 0, len(items))
	needle := strings.ToLower(strings.TrimSpace(q))
	for _, p := range items {
		if category != "" && p.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Category), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}
