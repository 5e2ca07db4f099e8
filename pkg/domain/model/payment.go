package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	CreditCard     PaymentMethod = "Credit Card"
	PayPal         PaymentMethod = "PayPal"
	BankTransfer   PaymentMethod = "Bank Transfer"
	CashOnDelivery PaymentMethod = "Cash on Delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case CreditCard, PayPal, BankTransfer, CashOnDelivery:
		return true
	}
	return false
}

type PaymentOutcome int

const (
	OutcomeSuccess PaymentOutcome = iota
	OutcomeFailed
)

func (o PaymentOutcome) String() string {
	if o == OutcomeSuccess {
		return "Success"
	}
	return "Failed"
}

// Payment records a single settlement attempt. It is never modified after creation.
type Payment struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	UserID        uuid.UUID
	Amount        decimal.Decimal
	Method        PaymentMethod
	TransactionID string
	Outcome       PaymentOutcome
	CreatedAt     time.Time
}

type PaymentRepository interface {
	NextID() (uuid.UUID, error)
	Create(payment *Payment) error
	FindByUserID(userID uuid.UUID) ([]Payment, error)
	FindByOrderID(orderID uuid.UUID) ([]Payment, error)
}
