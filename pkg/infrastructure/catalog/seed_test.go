package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
	"shop/pkg/infrastructure/memory"
)

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(service.Event) error { return nil }

func newProductService() service.ProductService {
	repo := memory.NewProductRepository()
	locks := service.NewKeyedMutex()
	ledger := service.NewInventoryLedger(repo, locks, nopDispatcher{})
	return service.NewProductService(repo, ledger, locks, nopDispatcher{})
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	require.NoError(t, Save(path, DefaultSeed()))
	seed, err := Load(path)

	require.NoError(t, err)
	require.Len(t, seed.Products, 2)
	assert.Equal(t, "Wireless Headphones", seed.Products[0].Name)
	assert.True(t, decimal.RequireFromString("199.99").Equal(seed.Products[0].Price))
	assert.Equal(t, model.Books, seed.Products[1].Category)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0666))
	_, err = Load(broken)
	assert.ErrorContains(t, err, "failed to parse catalog seed")
}

func TestApply(t *testing.T) {
	products := newProductService()

	added, err := Apply(products, DefaultSeed())

	require.NoError(t, err)
	require.Len(t, added, 2)
	listed, err := products.ListProducts("")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	assert.Equal(t, 50, added[0].Stock)
}

func TestApply_StopsAtInvalidProduct(t *testing.T) {
	seed := DefaultSeed()
	seed.Products[1].Price = decimal.Zero

	added, err := Apply(newProductService(), seed)

	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Len(t, added, 1)
}
