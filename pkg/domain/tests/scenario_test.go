package tests

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
	"shop/pkg/infrastructure/gateway"
	"shop/pkg/infrastructure/memory"
)

type shop struct {
	products *memory.ProductRepository
	orders   service.OrderService
	payments service.PaymentService
	catalog  service.ProductService
	users    service.UserService
}

func newShop(outcome model.PaymentOutcome) *shop {
	dispatcher := &mockEventDispatcher{}
	products := memory.NewProductRepository()
	orderRepo := memory.NewOrderRepository()
	userRepo := memory.NewUserRepository()
	orderLocks := service.NewKeyedMutex()
	productLocks := service.NewKeyedMutex()
	ledger := service.NewInventoryLedger(products, productLocks, dispatcher)

	return &shop{
		products: products,
		orders:   service.NewOrderService(orderRepo, userRepo, ledger, orderLocks, dispatcher),
		payments: service.NewPaymentService(memory.NewPaymentRepository(), orderRepo, gateway.Fixed{Outcome: outcome}, orderLocks, dispatcher),
		catalog:  service.NewProductService(products, ledger, productLocks, dispatcher),
		users:    service.NewUserService(userRepo, mockPasswordManager{}, dispatcher),
	}
}

func (s *shop) customer(t *testing.T, username string) *model.User {
	t.Helper()
	input := registerInput()
	input.Username = username
	user, err := s.users.RegisterUser(input)
	require.NoError(t, err)
	return user
}

func (s *shop) product(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	product, err := s.catalog.AddProduct(service.ProductInput{
		Name:     name,
		Price:    dec(price),
		Stock:    stock,
		Category: model.Electronics,
	})
	require.NoError(t, err)
	return product
}

func (s *shop) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	product, err := s.products.Find(id)
	require.NoError(t, err)
	return product.Stock
}

func TestOrderPayCancelScenario(t *testing.T) {
	s := newShop(model.OutcomeSuccess)
	user := s.customer(t, "testuser")
	a := s.product(t, "Wireless Headphones", "199.99", 50)
	b := s.product(t, "TypeScript Deep Dive", "39.99", 100)

	order, err := s.orders.CreateOrder(user.ID, []service.OrderItemRequest{item(a, 1), item(b, 2)}, user.Address, model.CreditCard)
	require.NoError(t, err)
	assert.True(t, dec("279.97").Equal(order.TotalAmount))
	assert.Equal(t, model.Pending, order.Status)
	assert.Equal(t, 49, s.stock(t, a.ID))
	assert.Equal(t, 98, s.stock(t, b.ID))

	payment, err := s.payments.ProcessPayment(order.ID, user.ID, dec("279.97"), model.CreditCard)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSuccess, payment.Outcome)

	paid, err := s.orders.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Processing, paid.Status)
	assert.Equal(t, model.Paid, paid.PaymentStatus)

	_, err = s.payments.ProcessPayment(order.ID, user.ID, dec("279.97"), model.CreditCard)
	assert.ErrorIs(t, err, model.ErrInvalidPaymentRequest)

	cancelled, err := s.orders.UpdateOrderStatus(order.ID, model.Cancelled)
	require.NoError(t, err)
	assert.Equal(t, model.Cancelled, cancelled.Status)
	assert.Equal(t, model.Paid, cancelled.PaymentStatus)
	assert.Equal(t, 50, s.stock(t, a.ID))
	assert.Equal(t, 100, s.stock(t, b.ID))
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	const orders, available = 50, 20
	s := newShop(model.OutcomeSuccess)
	user := s.customer(t, "buyer")
	product := s.product(t, "Limited Vinyl", "24.99", available)

	var placed, rejected atomic.Int64
	var group errgroup.Group
	for i := 0; i < orders; i++ {
		group.Go(func() error {
			_, err := s.orders.CreateOrder(user.ID, []service.OrderItemRequest{item(product, 1)}, user.Address, model.PayPal)
			switch {
			case err == nil:
				placed.Add(1)
			case errors.Is(err, model.ErrInsufficientStock):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())

	assert.EqualValues(t, available, placed.Load())
	assert.EqualValues(t, orders-available, rejected.Load())
	assert.Equal(t, 0, s.stock(t, product.ID))
}

func TestConcurrentOverlappingOrdersDoNotDeadlock(t *testing.T) {
	s := newShop(model.OutcomeSuccess)
	user := s.customer(t, "overlap")
	p1 := s.product(t, "P1", "1.00", 1000)
	p2 := s.product(t, "P2", "2.00", 1000)

	var group errgroup.Group
	for i := 0; i < 100; i++ {
		items := []service.OrderItemRequest{item(p1, 1), item(p2, 2)}
		if i%2 == 1 {
			items = []service.OrderItemRequest{item(p2, 2), item(p1, 1)}
		}
		group.Go(func() error {
			_, err := s.orders.CreateOrder(user.ID, items, user.Address, model.CreditCard)
			return err
		})
	}
	require.NoError(t, group.Wait())

	assert.Equal(t, 900, s.stock(t, p1.ID))
	assert.Equal(t, 800, s.stock(t, p2.ID))
}

func TestConcurrentPaymentsSettleOnce(t *testing.T) {
	s := newShop(model.OutcomeSuccess)
	user := s.customer(t, "payer")
	product := s.product(t, "Bike", "850.00", 3)
	order, err := s.orders.CreateOrder(user.ID, []service.OrderItemRequest{item(product, 1)}, user.Address, model.CreditCard)
	require.NoError(t, err)

	var succeeded, refused atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.payments.ProcessPayment(order.ID, user.ID, order.TotalAmount, model.CreditCard)
			if err == nil {
				succeeded.Add(1)
			} else if errors.Is(err, model.ErrInvalidPaymentRequest) {
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, succeeded.Load())
	assert.EqualValues(t, 19, refused.Load())

	attempts, err := s.payments.GetOrderPayments(order.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestConcurrentCancellationsRestoreOnce(t *testing.T) {
	s := newShop(model.OutcomeSuccess)
	user := s.customer(t, "canceller")
	product := s.product(t, "Tent", "199.00", 10)
	order, err := s.orders.CreateOrder(user.ID, []service.OrderItemRequest{item(product, 4)}, user.Address, model.CreditCard)
	require.NoError(t, err)

	var group errgroup.Group
	for i := 0; i < 10; i++ {
		group.Go(func() error {
			_, err := s.orders.UpdateOrderStatus(order.ID, model.Cancelled)
			return err
		})
	}
	require.NoError(t, group.Wait())

	assert.Equal(t, 10, s.stock(t, product.ID))
}

func TestConcurrentCancelAndPay(t *testing.T) {
	s := newShop(model.OutcomeSuccess)
	user := s.customer(t, "racer")
	product := s.product(t, "Kayak", "640.00", 2)

	for i := 0; i < 20; i++ {
		order, err := s.orders.CreateOrder(user.ID, []service.OrderItemRequest{item(product, 1)}, user.Address, model.CreditCard)
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.payments.ProcessPayment(order.ID, user.ID, order.TotalAmount, model.CreditCard)
		}()
		go func() {
			defer wg.Done()
			_, _ = s.orders.UpdateOrderStatus(order.ID, model.Cancelled)
		}()
		wg.Wait()

		final, err := s.orders.GetOrder(order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.Cancelled, final.Status)
		assert.True(t, final.StockReleased)
		assert.Equal(t, 2, s.stock(t, product.ID))
	}
}
