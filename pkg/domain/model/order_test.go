package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		Pending:    {Processing, Cancelled},
		Processing: {Shipped, Cancelled},
		Shipped:    {Delivered},
		Delivered:  nil,
		Cancelled:  nil,
	}

	all := []OrderStatus{Pending, Processing, Shipped, Delivered, Cancelled}
	for from, targets := range allowed {
		for _, to := range all {
			want := false
			for _, target := range targets {
				if target == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, status := range []OrderStatus{Pending, Processing, Shipped, Delivered, Cancelled} {
		parsed, err := ParseOrderStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := ParseOrderStatus("Lost")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, OrderStatus(99).Valid())
	assert.Equal(t, "OrderStatus(99)", OrderStatus(99).String())
}

func TestOrderClone(t *testing.T) {
	shipped := time.Now()
	order := Order{Items: []OrderItem{{Quantity: 1}}, ShippedAt: &shipped}

	clone := order.Clone()
	clone.Items[0].Quantity = 5
	*clone.ShippedAt = shipped.Add(time.Hour)

	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.Equal(t, shipped, *order.ShippedAt)
}

func TestInsufficientStockError(t *testing.T) {
	var err error = &InsufficientStockError{ProductName: "Headphones", Available: 1, Requested: 3}

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "not enough stock for product 'Headphones': available 1, requested 3", err.Error())
}
