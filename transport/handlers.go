package transport

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
	"shop/pkg/infrastructure/metrics"
)

type Services struct {
	Users    service.UserService
	Products service.ProductService
	Orders   service.OrderService
	Payments service.PaymentService
	Reviews  service.ReviewService

	Notifications service.NotificationService
}

type Handler struct {
	services Services
}

// Router exposes the shop API under /api/v1. Metrics and gatherer may be nil.
func Router(services Services, m *metrics.Metrics, gatherer prometheus.Gatherer) http.Handler {
	handler := &Handler{services: services}

	r := mux.NewRouter()
	if m != nil {
		r.Use(m.Middleware)
	}
	r.HandleFunc("/health", health).Methods(http.MethodGet)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	s := r.PathPrefix("/api/v1").Subrouter()

	s.HandleFunc("/users", handler.registerUser).Methods(http.MethodPost)
	s.HandleFunc("/users/login", handler.login).Methods(http.MethodPost)
	s.HandleFunc("/users/{id}", handler.getUser).Methods(http.MethodGet)
	s.HandleFunc("/users/{id}", handler.updateUser).Methods(http.MethodPatch)
	s.HandleFunc("/users/{id}/orders", handler.getUserOrders).Methods(http.MethodGet)
	s.HandleFunc("/users/{id}/payments", handler.getUserPayments).Methods(http.MethodGet)
	s.HandleFunc("/users/{id}/reviews", handler.getUserReviews).Methods(http.MethodGet)
	s.HandleFunc("/users/{id}/notifications", handler.getUserNotifications).Methods(http.MethodGet)

	s.HandleFunc("/products", handler.addProduct).Methods(http.MethodPost)
	s.HandleFunc("/products", handler.listProducts).Methods(http.MethodGet)
	s.HandleFunc("/products/{id}", handler.getProduct).Methods(http.MethodGet)
	s.HandleFunc("/products/{id}", handler.updateProduct).Methods(http.MethodPatch)
	s.HandleFunc("/products/{id}", handler.deleteProduct).Methods(http.MethodDelete)
	s.HandleFunc("/products/{id}/stock", handler.receiveStock).Methods(http.MethodPost)
	s.HandleFunc("/products/{id}/reviews", handler.submitReview).Methods(http.MethodPost)
	s.HandleFunc("/products/{id}/reviews", handler.getProductReviews).Methods(http.MethodGet)

	s.HandleFunc("/orders", handler.createOrder).Methods(http.MethodPost)
	s.HandleFunc("/orders/{id}", handler.getOrder).Methods(http.MethodGet)
	s.HandleFunc("/orders/{id}/status", handler.updateOrderStatus).Methods(http.MethodPut)
	s.HandleFunc("/orders/{id}/payments", handler.processPayment).Methods(http.MethodPost)
	s.HandleFunc("/orders/{id}/payments", handler.getOrderPayments).Methods(http.MethodGet)

	return logMiddleware(r)
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]service.OrderItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.services.Orders.CreateOrder(req.UserID, items, req.ShippingAddress.toModel(), model.PaymentMethod(req.PaymentMethod))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOrderResponse(order))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.services.Orders.GetOrder(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

func (h *Handler) getUserOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	orders, err := h.services.Orders.GetUserOrders(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(orders, newOrderResponse))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	order, err := h.services.Orders.UpdateOrderStatus(id, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

func (h *Handler) processPayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	payment, err := h.services.Payments.ProcessPayment(orderID, req.UserID, req.Amount, model.PaymentMethod(req.Method))
	if errors.Is(err, model.ErrPaymentDeclined) && payment != nil {
		writeError(w, http.StatusPaymentRequired, "payment_declined", err.Error(), newPaymentResponse(payment))
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPaymentResponse(payment))
}

func (h *Handler) getOrderPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	payments, err := h.services.Payments.GetOrderPayments(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(payments, newPaymentResponse))
}

func (h *Handler) getUserPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	payments, err := h.services.Payments.GetPaymentHistory(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(payments, newPaymentResponse))
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
