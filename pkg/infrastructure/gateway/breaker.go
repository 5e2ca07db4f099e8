package gateway

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"shop/pkg/domain/service"
)

var ErrUnavailable = errors.New("payment gateway unavailable")

type BreakerObserver interface {
	ObserveBreakerState(name string, state gobreaker.State)
	CountBreakerFailure(name string)
}

type BreakerSettings struct {
	Name string
	// MaxRequests is the number of calls let through while half-open.
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// MinRequests and FailureRatio decide when the breaker trips.
	MinRequests  uint32
	FailureRatio float64
}

// Breaker guards a gateway with a circuit breaker. Declined charges are
// business outcomes and do not count as failures; only gateway errors do.
type Breaker struct {
	next     service.PaymentGateway
	cb       *gobreaker.CircuitBreaker
	name     string
	observer BreakerObserver
}

func NewBreaker(next service.PaymentGateway, settings BreakerSettings, observer BreakerObserver) *Breaker {
	b := &Breaker{next: next, name: settings.Name, observer: observer}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= settings.MinRequests && failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if observer != nil {
				observer.ObserveBreakerState(name, to)
			}
			log.WithFields(log.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("circuit breaker state changed")
		},
	})
	if observer != nil {
		observer.ObserveBreakerState(settings.Name, gobreaker.StateClosed)
	}
	return b
}

func (b *Breaker) Charge(req service.ChargeRequest) (service.ChargeResult, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Charge(req)
	})
	if err != nil {
		if b.observer != nil {
			b.observer.CountBreakerFailure(b.name)
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return service.ChargeResult{}, errors.Wrapf(ErrUnavailable, "circuit breaker %s: %v", b.name, err)
		}
		return service.ChargeResult{}, err
	}
	return result.(service.ChargeResult), nil
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
