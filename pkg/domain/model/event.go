package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserRegistered struct {
	UserID   uuid.UUID
	Username string
	Email    string
}

func (e UserRegistered) Type() string { return "UserRegistered" }

type UserProfileUpdated struct {
	UserID uuid.UUID
}

func (e UserProfileUpdated) Type() string { return "UserProfileUpdated" }

type ProductCreated struct {
	ProductID uuid.UUID
	Name      string
	Stock     int
}

func (e ProductCreated) Type() string { return "ProductCreated" }

type ProductPriceChanged struct {
	ProductID uuid.UUID
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
}

func (e ProductPriceChanged) Type() string { return "ProductPriceChanged" }

type ProductStockChanged struct {
	ProductID    uuid.UUID
	ChangeAmount int // positive on restore or restock, negative on reservation
	NewQuantity  int
}

func (e ProductStockChanged) Type() string { return "ProductStockChanged" }

type ProductDeleted struct {
	ProductID uuid.UUID
}

func (e ProductDeleted) Type() string { return "ProductDeleted" }

type OrderCreated struct {
	OrderID     uuid.UUID
	UserID      uuid.UUID
	TotalAmount decimal.Decimal
	ItemCount   int
}

func (e OrderCreated) Type() string { return "OrderCreated" }

type OrderStatusChanged struct {
	OrderID   uuid.UUID
	OldStatus OrderStatus
	NewStatus OrderStatus
}

func (e OrderStatusChanged) Type() string { return "OrderStatusChanged" }

type OrderCancelled struct {
	OrderID       uuid.UUID
	StockRestored bool
	WasPaid       bool
}

func (e OrderCancelled) Type() string { return "OrderCancelled" }

type PaymentSucceeded struct {
	PaymentID     uuid.UUID
	OrderID       uuid.UUID
	UserID        uuid.UUID
	Amount        decimal.Decimal
	TransactionID string
}

func (e PaymentSucceeded) Type() string { return "PaymentSucceeded" }

type PaymentFailed struct {
	PaymentID     uuid.UUID
	OrderID       uuid.UUID
	UserID        uuid.UUID
	Amount        decimal.Decimal
	TransactionID string
}

func (e PaymentFailed) Type() string { return "PaymentFailed" }

type ReviewSubmitted struct {
	ReviewID  uuid.UUID
	ProductID uuid.UUID
	Rating    int
	NewRating decimal.Decimal
}

func (e ReviewSubmitted) Type() string { return "ReviewSubmitted" }

type NotificationDelivered struct {
	NotificationID uuid.UUID
	UserID         uuid.UUID
}

func (e NotificationDelivered) Type() string { return "NotificationDelivered" }

type NotificationDeliveryFailed struct {
	NotificationID uuid.UUID
	UserID         uuid.UUID
	Reason         string
}

func (e NotificationDeliveryFailed) Type() string { return "NotificationDeliveryFailed" }
