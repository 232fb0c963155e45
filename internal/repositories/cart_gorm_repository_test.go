package repositories_test

import (
	"testing"

	"footballshop/internal/models"
	"footballshop/internal/repositories"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&repositories.CartSnapshot{}))
	return db
}

func TestGORMCartRepository_LoadMissingKeyIsEmptyCart(t *testing.T) {
	repo := repositories.NewGORMCartRepository(setupDB(t))

	state, err := repo.Load("cart-store")
	assert.NoError(t, err)
	assert.Empty(t, state.Lines)
	assert.Empty(t, state.Coupon)
}

func TestGORMCartRepository_SaveAndLoadRoundTrip(t *testing.T) {
	repo := repositories.NewGORMCartRepository(setupDB(t))

	saved := &models.CartState{
		Lines: []models.CartLine{
			{Product: models.Product{ID: "prod-1", Name: "Camiseta Local 24/25", Price: 100000, Category: "Ropa"}, Qty: 2},
			{Product: models.Product{ID: "prod-2", Name: "Balón Profesional", Price: 90000}, Qty: 1},
		},
		Coupon: "HOLA10",
	}
	assert.NoError(t, repo.Save("cart-store", saved))

	loaded, err := repo.Load("cart-store")
	assert.NoError(t, err)
	assert.Equal(t, saved, loaded)
	assert.Equal(t, saved.Total(), loaded.Total())
}

func TestGORMCartRepository_SaveOverwritesExistingSnapshot(t *testing.T) {
	repo := repositories.NewGORMCartRepository(setupDB(t))

	first := &models.CartState{
		Lines:  []models.CartLine{{Product: models.Product{ID: "prod-1", Name: "Camiseta", Price: 100000}, Qty: 1}},
		Coupon: "HOLA10",
	}
	assert.NoError(t, repo.Save("cart-store", first))

	// An emptied cart fully replaces the previous snapshot
	assert.NoError(t, repo.Save("cart-store", &models.CartState{}))

	loaded, err := repo.Load("cart-store")
	assert.NoError(t, err)
	assert.Empty(t, loaded.Lines)
	assert.Empty(t, loaded.Coupon)
}

func TestGORMCartRepository_KeysAreIndependent(t *testing.T) {
	repo := repositories.NewGORMCartRepository(setupDB(t))

	assert.NoError(t, repo.Save("cart-a", &models.CartState{Coupon: "HOLA10"}))
	assert.NoError(t, repo.Save("cart-b", &models.CartState{}))

	a, err := repo.Load("cart-a")
	assert.NoError(t, err)
	assert.Equal(t, "HOLA10", a.Coupon)

	b, err := repo.Load("cart-b")
	assert.NoError(t, err)
	assert.Empty(t, b.Coupon)
}
