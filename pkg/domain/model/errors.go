package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)

	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrInvalidPaymentRequest = errors.New("invalid order or order already paid")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidTransition     = errors.New("invalid order status transition")
	ErrPaymentDeclined       = errors.New("payment failed")
	ErrDuplicate             = errors.New("already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrOptimisticLock        = errors.New("entity has been modified by another transaction")
)

// InsufficientStockError reports the stock shortfall of a single product.
// It matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for product '%s': available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
