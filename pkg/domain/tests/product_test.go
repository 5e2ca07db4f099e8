package tests

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
)

func headphonesInput() service.ProductInput {
	return service.ProductInput{
		Name:        "Wireless Headphones",
		Description: "High-quality noise-cancelling headphones.",
		Price:       dec("199.99"),
		Stock:       50,
		Category:    model.Electronics,
		ImageURL:    "http://example.com/hp.jpg",
		SellerID:    "seller_admin_1",
	}
}

func TestAddProduct(t *testing.T) {
	f := setup(t)

	product, err := f.productService.AddProduct(headphonesInput())

	require.NoError(t, err)
	assert.Equal(t, 1, product.Version)
	assert.Equal(t, 50, product.Stock)
	assert.True(t, product.Rating.IsZero())
	assert.Equal(t, 0, product.ReviewsCount)

	_, ok := f.products.store[product.ID]
	require.True(t, ok)

	require.Len(t, f.dispatcher.events, 1)
	event, ok := f.dispatcher.events[0].(model.ProductCreated)
	require.True(t, ok)
	assert.Equal(t, 50, event.Stock)
}

func TestAddProduct_Validation(t *testing.T) {
	f := setup(t)

	tests := map[string]func(in *service.ProductInput){
		"empty name":       func(in *service.ProductInput) { in.Name = "  " },
		"zero price":       func(in *service.ProductInput) { in.Price = decimal.Zero },
		"negative price":   func(in *service.ProductInput) { in.Price = dec("-1") },
		"negative stock":   func(in *service.ProductInput) { in.Stock = -1 },
		"unknown category": func(in *service.ProductInput) { in.Category = "Toys" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			input := headphonesInput()
			mutate(&input)
			_, err := f.productService.AddProduct(input)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
	assert.Empty(t, f.products.store)

	t.Run("Zero stock is allowed", func(t *testing.T) {
		input := headphonesInput()
		input.Stock = 0
		_, err := f.productService.AddProduct(input)
		assert.NoError(t, err)
	})
}

func TestListProducts(t *testing.T) {
	f := setup(t)
	_, err := f.productService.AddProduct(headphonesInput())
	require.NoError(t, err)
	book := headphonesInput()
	book.Name = "TypeScript Deep Dive"
	book.Category = model.Books
	_, err = f.productService.AddProduct(book)
	require.NoError(t, err)

	all, err := f.productService.ListProducts("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	electronics, err := f.productService.ListProducts(model.Electronics)
	require.NoError(t, err)
	require.Len(t, electronics, 1)
	assert.Equal(t, "Wireless Headphones", electronics[0].Name)

	_, err = f.productService.ListProducts("Toys")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestUpdateProduct(t *testing.T) {
	f := setup(t)
	product, err := f.productService.AddProduct(headphonesInput())
	require.NoError(t, err)

	t.Run("Partial update", func(t *testing.T) {
		f.dispatcher.Reset()
		name := "Studio Headphones"
		price := dec("149.99")

		updated, err := f.productService.UpdateProduct(product.ID, service.ProductChanges{Name: &name, Price: &price})

		require.NoError(t, err)
		assert.Equal(t, "Studio Headphones", updated.Name)
		assert.Equal(t, "High-quality noise-cancelling headphones.", updated.Description)
		assert.True(t, price.Equal(updated.Price))
		assert.Equal(t, 50, updated.Stock)
		assert.Equal(t, 2, updated.Version)

		require.Len(t, f.dispatcher.events, 1)
		event, ok := f.dispatcher.events[0].(model.ProductPriceChanged)
		require.True(t, ok)
		assert.True(t, dec("199.99").Equal(event.OldPrice))
	})

	t.Run("Fail on non-positive price", func(t *testing.T) {
		price := decimal.Zero
		_, err := f.productService.UpdateProduct(product.ID, service.ProductChanges{Price: &price})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		assert.True(t, dec("149.99").Equal(f.products.store[product.ID].Price))
	})

	t.Run("Fail on unknown product", func(t *testing.T) {
		_, err := f.productService.UpdateProduct(uuid.New(), service.ProductChanges{})
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestReceiveStock(t *testing.T) {
	f := setup(t)
	product, err := f.productService.AddProduct(headphonesInput())
	require.NoError(t, err)

	require.NoError(t, f.productService.ReceiveStock(product.ID, 25))
	assert.Equal(t, 75, f.products.stock(product.ID))

	assert.ErrorIs(t, f.productService.ReceiveStock(product.ID, 0), model.ErrInvalidInput)
}

func TestDeleteProduct(t *testing.T) {
	f := setup(t)
	product, err := f.productService.AddProduct(headphonesInput())
	require.NoError(t, err)

	require.NoError(t, f.productService.DeleteProduct(product.ID))
	_, err = f.productService.GetProduct(product.ID)
	assert.ErrorIs(t, err, model.ErrProductNotFound)

	assert.ErrorIs(t, f.productService.DeleteProduct(product.ID), model.ErrProductNotFound)
}

func TestCancelAfterProductDeletion(t *testing.T) {
	f := setup(t)
	user := f.addUser(t, "victor")
	kept := f.addProduct(t, "Kept", "10.00", 5)
	removed := f.addProduct(t, "Removed", "10.00", 5)
	order := f.placeOrder(t, user, item(kept, 2), item(removed, 2))
	require.NoError(t, f.productService.DeleteProduct(removed.ID))

	cancelled, err := f.orderService.UpdateOrderStatus(order.ID, model.Cancelled)

	require.NoError(t, err)
	assert.Equal(t, model.Cancelled, cancelled.Status)
	assert.Equal(t, 5, f.products.stock(kept.ID))
}
