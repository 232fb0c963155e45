package services_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"footballshop/internal/models"
	"footballshop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductLister is a mock implementation of services.ProductLister
type MockProductLister struct {
	mock.Mock
}

func (m *MockProductLister) ListProducts(ctx context.Context, q, category string) ([]models.Product, error) {
	args := m.Called(q, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func writeProductsFile(t *testing.T, products string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	assert.NoError(t, os.WriteFile(path, []byte(products), 0o644))
	return path
}

func TestCatalogService_RefreshUsesAPI(t *testing.T) {
	lister := new(MockProductLister)
	expected := []models.Product{
		{ID: "prod-1", Name: "Camiseta Local 24/25", Price: 100000, Category: "Ropa"},
		{ID: "prod-2", Name: "Balón Profesional", Price: 90000, Category: "Accesorios"},
	}
	lister.On("ListProducts", "", "").Return(expected, nil).Once()

	svc := services.NewCatalogService(lister, "does-not-exist.json")
	items, err := svc.Refresh(context.Background(), "", "")

	assert.NoError(t, err)
	assert.Equal(t, expected, items)
	assert.Equal(t, expected, svc.Products())
	lister.AssertExpectations(t)
}

func TestCatalogService_FallsBackToLocalFile(t *testing.T) {
	lister := new(MockProductLister)
	lister.On("ListProducts", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("connection refused"))

	path := writeProductsFile(t, `[
		{"id": "prod-1", "name": "Camiseta Local 24/25", "price": 100000, "category": "Ropa"},
		{"id": "prod-2", "name": "Balón Profesional", "price": 90000, "category": "Accesorios"},
		{"id": "prod-3", "name": "Camiseta Visitante", "price": 95000, "category": "Ropa"}
	]`)
	svc := services.NewCatalogService(lister, path)

	// The fallback applies the same q/category semantics locally
	items, err := svc.Refresh(context.Background(), "camiseta", "")
	assert.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = svc.Refresh(context.Background(), "", "Accesorios")
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "prod-2", items[0].ID)
}

func TestCatalogService_ErrorWhenAPIAndFallbackFail(t *testing.T) {
	lister := new(MockProductLister)
	lister.On("ListProducts", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("connection refused"))

	svc := services.NewCatalogService(lister, filepath.Join(t.TempDir(), "missing.json"))
	_, err := svc.Refresh(context.Background(), "", "")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "catalog unavailable")
}

// scriptedLister blocks the "slow" query until released so a newer
// query can overtake it.
type scriptedLister struct {
	started chan struct{}
	release chan struct{}
	slow    []models.Product
	fast    []models.Product
}

func (l *scriptedLister) ListProducts(_ context.Context, q, _ string) ([]models.Product, error) {
	if q == "slow" {
		close(l.started)
		<-l.release
		return l.slow, nil
	}
	return l.fast, nil
}

func TestCatalogService_DiscardsStaleQueryResult(t *testing.T) {
	lister := &scriptedLister{
		started: make(chan struct{}),
		release: make(chan struct{}),
		slow:    []models.Product{{ID: "prod-old", Name: "Stale", Price: 1}},
		fast:    []models.Product{{ID: "prod-new", Name: "Fresh", Price: 2}},
	}
	svc := services.NewCatalogService(lister, "does-not-exist.json")

	slowDone := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background(), "slow", "")
		slowDone <- err
	}()

	// Wait until the slow query is in flight, then let a newer query win
	<-lister.started
	items, err := svc.Refresh(context.Background(), "fast", "")
	assert.NoError(t, err)
	assert.Equal(t, "prod-new", items[0].ID)

	// The late result must be discarded, not applied
	close(lister.release)
	assert.ErrorIs(t, <-slowDone, services.ErrStaleQuery)
	assert.Equal(t, "prod-new", svc.Products()[0].ID)
}

func TestCatalogService_Categories(t *testing.T) {
	lister := new(MockProductLister)
	lister.On("ListProducts", "", "").Return([]models.Product{
		{ID: "prod-1", Name: "Camiseta", Price: 100000, Category: "Ropa"},
		{ID: "prod-2", Name: "Balón", Price: 90000, Category: "Accesorios"},
		{ID: "prod-3", Name: "Guantes", Price: 50000, Category: "Ropa"},
		{ID: "prod-4", Name: "Entrada", Price: 20000},
	}, nil).Once()

	svc := services.NewCatalogService(lister, "does-not-exist.json")
	_, err := svc.Refresh(context.Background(), "", "")
	assert.NoError(t, err)

	assert.Equal(t, []string{"Ropa", "Accesorios", "Otros"}, svc.Categories())
}
