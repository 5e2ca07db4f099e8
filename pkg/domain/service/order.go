package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"shop/pkg/domain/model"
)

// TransitionPolicy decides which status changes UpdateOrderStatus accepts.
type TransitionPolicy int

const (
	// StrictTransitions only follows the order state machine.
	StrictTransitions TransitionPolicy = iota
	// LenientTransitions accepts any known status. Stock is still restored at most once.
	LenientTransitions
)

func ParseTransitionPolicy(value string) (TransitionPolicy, error) {
	switch value {
	case "", "strict":
		return StrictTransitions, nil
	case "lenient":
		return LenientTransitions, nil
	}
	return 0, fmt.Errorf("%w: unknown transition policy %q", model.ErrInvalidInput, value)
}

type OrderItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

type OrderService interface {
	CreateOrder(userID uuid.UUID, items []OrderItemRequest, shippingAddress model.Address, paymentMethod model.PaymentMethod) (*model.Order, error)
	GetOrder(orderID uuid.UUID) (*model.Order, error)
	GetUserOrders(userID uuid.UUID) ([]model.Order, error)
	UpdateOrderStatus(orderID uuid.UUID, newStatus model.OrderStatus) (*model.Order, error)
}

type OrderServiceOption func(s *orderService)

func WithTransitionPolicy(policy TransitionPolicy) OrderServiceOption {
	return func(s *orderService) { s.policy = policy }
}

func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *orderService) { s.now = now }
}

func NewOrderService(
	orders model.OrderRepository,
	users model.UserRepository,
	ledger InventoryLedger,
	orderLocks *KeyedMutex,
	dispatcher EventDispatcher,
	opts ...OrderServiceOption,
) OrderService {
	s := &orderService{
		orders:     orders,
		users:      users,
		ledger:     ledger,
		locks:      orderLocks,
		dispatcher: dispatcher,
		policy:     StrictTransitions,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type orderService struct {
	orders     model.OrderRepository
	users      model.UserRepository
	ledger     InventoryLedger
	locks      *KeyedMutex
	dispatcher EventDispatcher
	policy     TransitionPolicy
	now        func() time.Time
}

func (s *orderService) CreateOrder(
	userID uuid.UUID,
	items []OrderItemRequest,
	shippingAddress model.Address,
	paymentMethod model.PaymentMethod,
) (*model.Order, error) {
	if _, err := s.users.Find(userID); err != nil {
		return nil, err
	}
	if !paymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", model.ErrInvalidInput, paymentMethod)
	}

	lines := make([]ReservationLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, ReservationLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	orderID, err := s.orders.NextID()
	if err != nil {
		return nil, err
	}

	snapshots, err := s.ledger.ReserveAll(lines)
	if err != nil {
		return nil, err
	}

	orderItems := make([]model.OrderItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		product := snapshots[item.ProductID]
		line := model.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			Quantity:     item.Quantity,
			PriceAtOrder: product.Price,
		}
		orderItems = append(orderItems, line)
		total = total.Add(line.Subtotal())
	}

	now := s.now()
	order := &model.Order{
		ID:              orderID,
		UserID:          userID,
		Items:           orderItems,
		TotalAmount:     total,
		Status:          model.Pending,
		PaymentStatus:   model.Unpaid,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(order); err != nil {
		if restoreErr := s.ledger.RestoreAll(lines); restoreErr != nil {
			log.WithError(restoreErr).WithField("order_id", orderID).Error("failed to release reservation of unsaved order")
		}
		return nil, errors.Wrap(err, "failed to save order")
	}

	_ = s.dispatcher.Dispatch(model.OrderCreated{
		OrderID:     orderID,
		UserID:      userID,
		TotalAmount: total,
		ItemCount:   len(orderItems),
	})
	return order, nil
}

func (s *orderService) GetOrder(orderID uuid.UUID) (*model.Order, error) {
	return s.orders.Find(orderID)
}

func (s *orderService) GetUserOrders(userID uuid.UUID) ([]model.Order, error) {
	return s.orders.FindByUserID(userID)
}

func (s *orderService) UpdateOrderStatus(orderID uuid.UUID, newStatus model.OrderStatus) (*model.Order, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %d", model.ErrInvalidInput, int(newStatus))
	}

	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orders.Find(orderID)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	if oldStatus == newStatus {
		return order, nil
	}
	if s.policy == StrictTransitions && !oldStatus.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", model.ErrInvalidTransition, oldStatus, newStatus)
	}

	now := s.now()
	order.Status = newStatus

	restored := false
	switch newStatus {
	case model.Shipped:
		if order.ShippedAt == nil {
			order.ShippedAt = &now
		}
	case model.Delivered:
		if order.DeliveredAt == nil {
			order.DeliveredAt = &now
		}
	case model.Cancelled:
		if !order.StockReleased {
			if err := s.ledger.RestoreAll(reservationLines(order)); err != nil {
				return nil, err
			}
			order.StockReleased = true
			restored = true
		}
	}

	if err := s.updateOrder(order, now); err != nil {
		if restored {
			if _, reserveErr := s.ledger.ReserveAll(reservationLines(order)); reserveErr != nil {
				log.WithError(reserveErr).WithField("order_id", orderID).Error("failed to take back restored stock")
			}
		}
		return nil, errors.Wrap(err, "failed to save order")
	}

	_ = s.dispatcher.Dispatch(model.OrderStatusChanged{OrderID: orderID, OldStatus: oldStatus, NewStatus: newStatus})
	if newStatus == model.Cancelled {
		_ = s.dispatcher.Dispatch(model.OrderCancelled{
			OrderID:       orderID,
			StockRestored: restored,
			WasPaid:       order.PaymentStatus == model.Paid,
		})
	}
	return order, nil
}

func (s *orderService) updateOrder(order *model.Order, now time.Time) error {
	order.Version++
	order.UpdatedAt = now
	return s.orders.Update(order)
}

func reservationLines(order *model.Order) []ReservationLine {
	lines := make([]ReservationLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, ReservationLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}
