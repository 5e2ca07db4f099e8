package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop/pkg/domain/model"
)

type ChargeRequest struct {
	OrderID uuid.UUID
	Amount  decimal.Decimal
	Method  model.PaymentMethod
}

type ChargeResult struct {
	TransactionID string
	Outcome       model.PaymentOutcome
}

// PaymentGateway settles a charge. A declined charge is reported through
// ChargeResult.Outcome; an error means no outcome is known.
type PaymentGateway interface {
	Charge(req ChargeRequest) (ChargeResult, error)
}
