package tests

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
)

type fixture struct {
	users      *mockUserRepository
	products   *mockProductRepository
	orders     *mockOrderRepository
	payments   *mockPaymentRepository
	reviews    *mockReviewRepository
	gateway    *mockGateway
	dispatcher *mockEventDispatcher

	ledger         service.InventoryLedger
	orderService   service.OrderService
	paymentService service.PaymentService
	productService service.ProductService
	userService    service.UserService
	reviewService  service.ReviewService
}

func setup(t *testing.T, opts ...service.OrderServiceOption) *fixture {
	t.Helper()
	f := &fixture{
		users:      newMockUserRepository(),
		products:   newMockProductRepository(),
		orders:     newMockOrderRepository(),
		payments:   &mockPaymentRepository{},
		reviews:    &mockReviewRepository{},
		gateway:    &mockGateway{},
		dispatcher: &mockEventDispatcher{},
	}

	orderLocks := service.NewKeyedMutex()
	productLocks := service.NewKeyedMutex()
	f.ledger = service.NewInventoryLedger(f.products, productLocks, f.dispatcher)
	f.orderService = service.NewOrderService(f.orders, f.users, f.ledger, orderLocks, f.dispatcher, opts...)
	f.paymentService = service.NewPaymentService(f.payments, f.orders, f.gateway, orderLocks, f.dispatcher)
	f.productService = service.NewProductService(f.products, f.ledger, productLocks, f.dispatcher)
	f.userService = service.NewUserService(f.users, mockPasswordManager{}, f.dispatcher)
	f.reviewService = service.NewReviewService(f.reviews, f.products, f.users, productLocks, f.dispatcher)
	return f
}

func (f *fixture) addUser(t *testing.T, username string) *model.User {
	t.Helper()
	id, _ := f.users.NextID()
	now := time.Now().UTC()
	user := &model.User{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		Role:      model.Customer,
		Address:   testAddress(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.users.Create(user))
	return user
}

func (f *fixture) addProduct(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	id, _ := f.products.NextID()
	now := time.Now().UTC()
	product := &model.Product{
		ID:        id,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Category:  model.Electronics,
		Rating:    decimal.Zero,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.products.Create(product))
	return product
}

// placeOrder creates an order and clears the events it produced.
func (f *fixture) placeOrder(t *testing.T, user *model.User, items ...service.OrderItemRequest) *model.Order {
	t.Helper()
	order, err := f.orderService.CreateOrder(user.ID, items, user.Address, model.CreditCard)
	require.NoError(t, err)
	f.dispatcher.Reset()
	return order
}

func item(product *model.Product, quantity int) service.OrderItemRequest {
	return service.OrderItemRequest{ProductID: product.ID, Quantity: quantity}
}

func testAddress() model.Address {
	return model.Address{Street: "123 Main St", City: "Anytown", State: "CA", ZipCode: "90210", Country: "USA"}
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
