package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
	"shop/pkg/infrastructure/catalog"
	"shop/transport"
)

// runSimulation walks one customer through the whole shop and, when
// concurrency is positive, races that many orders for a scarce product.
func runSimulation(ctx context.Context, s transport.Services, concurrency int) error {
	address := model.Address{Street: "123 Main St", City: "Anytown", State: "CA", ZipCode: "90210", Country: "USA"}

	user, err := s.Users.RegisterUser(service.RegisterUserInput{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
		Role:     model.Customer,
		Address:  address,
	})
	if err != nil {
		return err
	}
	log.WithField("username", user.Username).Info("user registered")

	if _, err := s.Users.AuthenticateUser("testuser", "password123"); err != nil {
		return err
	}
	log.WithField("username", user.Username).Info("user logged in")

	products, err := catalog.Apply(s.Products, catalog.DefaultSeed())
	if err != nil {
		return err
	}
	headphones, book := products[0], products[1]

	all, err := s.Products.ListProducts("")
	if err != nil {
		return err
	}
	electronics, err := s.Products.ListProducts(model.Electronics)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"all": len(all), "electronics": len(electronics)}).Info("catalog listed")

	order, err := s.Orders.CreateOrder(user.ID, []service.OrderItemRequest{
		{ProductID: headphones.ID, Quantity: 1},
		{ProductID: book.ID, Quantity: 2},
	}, user.Address, model.CreditCard)
	if err != nil {
		return err
	}
	stock, err := s.Products.GetProduct(headphones.ID)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"order_id":         order.ID,
		"total":            order.TotalAmount.StringFixed(2),
		"status":           order.Status.String(),
		"headphones_stock": stock.Stock,
	}).Info("order created")

	payment, err := s.Payments.ProcessPayment(order.ID, order.UserID, order.TotalAmount, order.PaymentMethod)
	switch {
	case errors.Is(err, model.ErrPaymentDeclined):
		log.WithField("transaction_id", payment.TransactionID).Warn("payment declined")
	case err != nil:
		return err
	default:
		log.WithField("transaction_id", payment.TransactionID).Info("payment succeeded")
	}

	for _, status := range []model.OrderStatus{model.Shipped, model.Delivered} {
		updated, err := s.Orders.UpdateOrderStatus(order.ID, status)
		if err != nil {
			log.WithError(err).WithField("status", status.String()).Warn("status update rejected")
			continue
		}
		log.WithField("status", updated.Status.String()).Info("order status updated")
	}

	if _, err := s.Reviews.SubmitReview(headphones.ID, user.ID, 5, "Great sound and a design I love."); err != nil {
		return err
	}
	reviewed, err := s.Products.GetProduct(headphones.ID)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"rating":        reviewed.Rating.String(),
		"reviews_count": reviewed.ReviewsCount,
	}).Info("review submitted")

	notices, err := s.Notifications.GetUserNotifications(user.ID)
	if err != nil {
		return err
	}
	log.WithField("notifications", len(notices)).Info("customer notified")

	if concurrency > 0 {
		return raceForStock(ctx, s, user, concurrency)
	}
	return nil
}

// raceForStock fires concurrency single-unit orders at a product holding
// half as many units and reports how many went through.
func raceForStock(ctx context.Context, s transport.Services, user *model.User, concurrency int) error {
	available := concurrency / 2
	product, err := s.Products.AddProduct(service.ProductInput{
		Name:     "Limited Edition Vinyl",
		Price:    decimal.RequireFromString("24.99"),
		Stock:    available,
		Category: model.Electronics,
	})
	if err != nil {
		return err
	}

	var placed, rejected atomic.Int64
	group, _ := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		group.Go(func() error {
			_, err := s.Orders.CreateOrder(user.ID,
				[]service.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
				user.Address, model.PayPal)
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
	if err := group.Wait(); err != nil {
		return err
	}

	final, err := s.Products.GetProduct(product.ID)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"orders":      concurrency,
		"stock":       available,
		"placed":      placed.Load(),
		"rejected":    rejected.Load(),
		"final_stock": final.Stock,
	}).Info("concurrent ordering finished")

	if placed.Load() != int64(available) || final.Stock != 0 {
		return fmt.Errorf("stock race broke consistency: placed %d of %d, final stock %d",
			placed.Load(), available, final.Stock)
	}
	return nil
}
