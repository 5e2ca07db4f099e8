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

type PaymentService interface {
	ProcessPayment(orderID, userID uuid.UUID, amount decimal.Decimal, method model.PaymentMethod) (*model.Payment, error)
	GetPaymentHistory(userID uuid.UUID) ([]model.Payment, error)
	GetOrderPayments(orderID uuid.UUID) ([]model.Payment, error)
}

func NewPaymentService(
	payments model.PaymentRepository,
	orders model.OrderRepository,
	gateway PaymentGateway,
	orderLocks *KeyedMutex,
	dispatcher EventDispatcher,
) PaymentService {
	return &paymentService{
		payments:   payments,
		orders:     orders,
		gateway:    gateway,
		locks:      orderLocks,
		dispatcher: dispatcher,
	}
}

type paymentService struct {
	payments   model.PaymentRepository
	orders     model.OrderRepository
	gateway    PaymentGateway
	locks      *KeyedMutex
	dispatcher EventDispatcher
}

func (s *paymentService) ProcessPayment(
	orderID, userID uuid.UUID,
	amount decimal.Decimal,
	method model.PaymentMethod,
) (*model.Payment, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", model.ErrInvalidInput, method)
	}

	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orders.Find(orderID)
	if errors.Is(err, model.ErrOrderNotFound) {
		return nil, fmt.Errorf("%w: order %s does not exist", model.ErrInvalidPaymentRequest, orderID)
	}
	if err != nil {
		return nil, err
	}
	if err := validatePayment(order, userID, amount); err != nil {
		return nil, err
	}

	paymentID, err := s.payments.NextID()
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.Charge(ChargeRequest{OrderID: orderID, Amount: amount, Method: method})
	if err != nil {
		return nil, errors.Wrap(err, "payment gateway")
	}

	payment := &model.Payment{
		ID:            paymentID,
		OrderID:       orderID,
		UserID:        userID,
		Amount:        amount,
		Method:        method,
		TransactionID: result.TransactionID,
		Outcome:       result.Outcome,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.payments.Create(payment); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"order_id":       orderID,
			"transaction_id": result.TransactionID,
			"outcome":        result.Outcome.String(),
		}).Error("charge settled but payment record was not saved")
		return nil, errors.Wrap(err, "failed to save payment")
	}

	if result.Outcome != model.OutcomeSuccess {
		_ = s.dispatcher.Dispatch(model.PaymentFailed{
			PaymentID:     paymentID,
			OrderID:       orderID,
			UserID:        userID,
			Amount:        amount,
			TransactionID: result.TransactionID,
		})
		return payment, model.ErrPaymentDeclined
	}

	oldStatus := order.Status
	order.PaymentStatus = model.Paid
	if order.Status == model.Pending {
		order.Status = model.Processing
	}
	order.Version++
	order.UpdatedAt = time.Now().UTC()
	if err := s.orders.Update(order); err != nil {
		return nil, errors.Wrap(err, "failed to mark order as paid")
	}

	_ = s.dispatcher.Dispatch(model.PaymentSucceeded{
		PaymentID:     paymentID,
		OrderID:       orderID,
		UserID:        userID,
		Amount:        amount,
		TransactionID: result.TransactionID,
	})
	if oldStatus != order.Status {
		_ = s.dispatcher.Dispatch(model.OrderStatusChanged{OrderID: orderID, OldStatus: oldStatus, NewStatus: order.Status})
	}
	return payment, nil
}

func (s *paymentService) GetPaymentHistory(userID uuid.UUID) ([]model.Payment, error) {
	return s.payments.FindByUserID(userID)
}

func (s *paymentService) GetOrderPayments(orderID uuid.UUID) ([]model.Payment, error) {
	return s.payments.FindByOrderID(orderID)
}

func validatePayment(order *model.Order, userID uuid.UUID, amount decimal.Decimal) error {
	switch {
	case order.UserID != userID:
		return fmt.Errorf("%w: order %s belongs to another user", model.ErrInvalidPaymentRequest, order.ID)
	case order.PaymentStatus == model.Paid:
		return fmt.Errorf("%w: order %s is already paid", model.ErrInvalidPaymentRequest, order.ID)
	case order.Status == model.Cancelled:
		return fmt.Errorf("%w: order %s is cancelled", model.ErrInvalidPaymentRequest, order.ID)
	case !amount.Equal(order.TotalAmount):
		return fmt.Errorf("%w: amount %s does not match order total %s",
			model.ErrInvalidPaymentRequest, amount.StringFixed(2), order.TotalAmount.StringFixed(2))
	}
	return nil
}
