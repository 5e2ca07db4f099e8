package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
)

// Metrics holds the shop collectors. It doubles as an event dispatcher so
// that business counters follow the domain events.
type Metrics struct {
	RequestsTotal          *prometheus.CounterVec
	RequestDuration        *prometheus.HistogramVec
	CircuitBreakerState    *prometheus.GaugeVec
	CircuitBreakerFailures *prometheus.CounterVec
	OrdersTotal            *prometheus.CounterVec
	PaymentsTotal          *prometheus.CounterVec
	PaymentAmount          prometheus.Histogram
	InventoryLevel         *prometheus.GaugeVec
	NotificationsTotal     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		// 0=closed, 1=open, 2=half-open
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"circuit_name"},
		),
		CircuitBreakerFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_failures_total",
				Help: "Total number of calls rejected or failed through a circuit breaker",
			},
			[]string{"circuit_name"},
		),
		OrdersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_total",
				Help: "Total number of order lifecycle events by status",
			},
			[]string{"status"},
		),
		PaymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_total",
				Help: "Total number of payment attempts by outcome",
			},
			[]string{"outcome"},
		),
		PaymentAmount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "payment_amount",
				Help:    "Amounts of successful payments",
				Buckets: []float64{10, 50, 100, 500, 1000, 5000},
			},
		),
		InventoryLevel: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "inventory_level",
				Help: "Current stock level per product",
			},
			[]string{"product_id"},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Total number of customer notifications by delivery status",
			},
			[]string{"status"},
		),
	}
}

func (m *Metrics) Dispatch(event service.Event) error {
	switch e := event.(type) {
	case model.OrderCreated:
		m.OrdersTotal.WithLabelValues(model.Pending.String()).Inc()
	case model.OrderStatusChanged:
		m.OrdersTotal.WithLabelValues(e.NewStatus.String()).Inc()
	case model.PaymentSucceeded:
		m.PaymentsTotal.WithLabelValues(model.OutcomeSuccess.String()).Inc()
		m.PaymentAmount.Observe(e.Amount.InexactFloat64())
	case model.PaymentFailed:
		m.PaymentsTotal.WithLabelValues(model.OutcomeFailed.String()).Inc()
	case model.ProductCreated:
		m.InventoryLevel.WithLabelValues(e.ProductID.String()).Set(float64(e.Stock))
	case model.ProductStockChanged:
		m.InventoryLevel.WithLabelValues(e.ProductID.String()).Set(float64(e.NewQuantity))
	case model.ProductDeleted:
		m.InventoryLevel.DeleteLabelValues(e.ProductID.String())
	case model.NotificationDelivered:
		m.NotificationsTotal.WithLabelValues(model.NotificationSent.String()).Inc()
	case model.NotificationDeliveryFailed:
		m.NotificationsTotal.WithLabelValues(model.NotificationFailed.String()).Inc()
	}
	return nil
}

func (m *Metrics) ObserveBreakerState(name string, state gobreaker.State) {
	value := float64(0)
	switch state {
	case gobreaker.StateOpen:
		value = 1
	case gobreaker.StateHalfOpen:
		value = 2
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(value)
}

func (m *Metrics) CountBreakerFailure(name string) {
	m.CircuitBreakerFailures.WithLabelValues(name).Inc()
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				endpoint = template
			}
		}
		m.RequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(recorder.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
