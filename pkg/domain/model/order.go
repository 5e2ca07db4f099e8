package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus int

const (
	Pending OrderStatus = iota
	Processing
	Shipped
	Delivered
	Cancelled
)

var orderStatusNames = map[OrderStatus]string{
	Pending:    "Pending",
	Processing: "Processing",
	Shipped:    "Shipped",
	Delivered:  "Delivered",
	Cancelled:  "Cancelled",
}

// orderTransitions lists the statuses reachable from each status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	Pending:    {Processing, Cancelled},
	Processing: {Shipped, Cancelled},
	Shipped:    {Delivered},
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OrderStatus(%d)", int(s))
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusNames[s]
	return ok
}

// IsTerminal reports whether no further stock-affecting transition is expected.
func (s OrderStatus) IsTerminal() bool {
	return s == Shipped || s == Delivered || s == Cancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	for status, name := range orderStatusNames {
		if name == value {
			return status, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, value)
}

type PaymentStatus int

const (
	Unpaid PaymentStatus = iota
	Paid
)

func (s PaymentStatus) String() string {
	if s == Paid {
		return "Paid"
	}
	return "Unpaid"
}

type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// OrderItem is a line item frozen at order time.
type OrderItem struct {
	ProductID    uuid.UUID
	ProductName  string
	Quantity     int
	PriceAtOrder decimal.Decimal
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Items           []OrderItem
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	ShippingAddress Address
	PaymentMethod   PaymentMethod
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	// StockReleased is set once the cancellation has returned the items to stock.
	StockReleased bool
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a copy that shares no mutable state with o.
func (o Order) Clone() Order {
	clone := o
	clone.Items = append([]OrderItem(nil), o.Items...)
	if o.ShippedAt != nil {
		t := *o.ShippedAt
		clone.ShippedAt = &t
	}
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		clone.DeliveredAt = &t
	}
	return clone
}

type OrderRepository interface {
	NextID() (uuid.UUID, error)
	Create(order *Order) error
	Find(id uuid.UUID) (*Order, error)
	FindByUserID(userID uuid.UUID) ([]Order, error)
	Update(order *Order) error
}
