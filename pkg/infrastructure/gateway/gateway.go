package gateway

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
)

const DefaultSuccessRate = 0.9

// Random approves a charge with the configured probability.
type Random struct {
	mu          sync.Mutex
	rnd         *rand.Rand
	successRate float64
}

func NewRandom(successRate float64, seed int64) *Random {
	return &Random{rnd: rand.New(rand.NewSource(seed)), successRate: successRate}
}

func (g *Random) Charge(service.ChargeRequest) (service.ChargeResult, error) {
	g.mu.Lock()
	roll := g.rnd.Float64()
	g.mu.Unlock()

	outcome := model.OutcomeFailed
	if roll < g.successRate {
		outcome = model.OutcomeSuccess
	}
	return service.ChargeResult{TransactionID: newTransactionID(), Outcome: outcome}, nil
}

// Fixed always returns the same outcome.
type Fixed struct {
	Outcome model.PaymentOutcome
}

func (g Fixed) Charge(service.ChargeRequest) (service.ChargeResult, error) {
	return service.ChargeResult{TransactionID: newTransactionID(), Outcome: g.Outcome}, nil
}

func newTransactionID() string {
	return "txn_" + uuid.NewString()
}
