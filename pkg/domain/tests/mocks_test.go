package tests

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
)

type mockProductRepository struct {
	mu         sync.Mutex
	store      map[uuid.UUID]*model.Product
	failUpdate map[uuid.UUID]error
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		store:      make(map[uuid.UUID]*model.Product),
		failUpdate: make(map[uuid.UUID]error),
	}
}

func (m *mockProductRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockProductRepository) Create(p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.store[p.ID]; exists {
		return errors.New("product already exists")
	}
	val := *p
	m.store[p.ID] = &val
	return nil
}

func (m *mockProductRepository) Update(p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failUpdate[p.ID]; err != nil {
		return err
	}
	existing, ok := m.store[p.ID]
	if !ok {
		return model.ErrProductNotFound
	}
	if existing.Version != p.Version-1 {
		return model.ErrOptimisticLock
	}
	val := *p
	m.store[p.ID] = &val
	return nil
}

func (m *mockProductRepository) Find(id uuid.UUID) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	val := *p
	return &val, nil
}

func (m *mockProductRepository) FindAll() ([]model.Product, error) {
	return m.filter(func(model.Product) bool { return true }), nil
}

func (m *mockProductRepository) FindByCategory(category model.ProductCategory) ([]model.Product, error) {
	return m.filter(func(p model.Product) bool { return p.Category == category }), nil
}

func (m *mockProductRepository) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return model.ErrProductNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *mockProductRepository) filter(match func(model.Product) bool) []model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]model.Product, 0)
	for _, p := range m.store {
		if match(*p) {
			result = append(result, *p)
		}
	}
	return result
}

func (m *mockProductRepository) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store[id].Stock
}

type mockOrderRepository struct {
	mu        sync.Mutex
	store     map[uuid.UUID]*model.Order
	createErr error
	updateErr error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{store: make(map[uuid.UUID]*model.Order)}
}

func (m *mockOrderRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockOrderRepository) Create(o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	val := o.Clone()
	m.store[o.ID] = &val
	return nil
}

func (m *mockOrderRepository) Find(id uuid.UUID) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	val := o.Clone()
	return &val, nil
}

func (m *mockOrderRepository) FindByUserID(userID uuid.UUID) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]model.Order, 0)
	for _, o := range m.store {
		if o.UserID == userID {
			result = append(result, o.Clone())
		}
	}
	slices.SortFunc(result, func(a, b model.Order) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return result, nil
}

func (m *mockOrderRepository) Update(o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	existing, ok := m.store[o.ID]
	if !ok {
		return model.ErrOrderNotFound
	}
	if existing.Version != o.Version-1 {
		return model.ErrOptimisticLock
	}
	val := o.Clone()
	m.store[o.ID] = &val
	return nil
}

func (m *mockOrderRepository) get(id uuid.UUID) model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store[id].Clone()
}

type mockPaymentRepository struct {
	mu        sync.Mutex
	store     []model.Payment
	createErr error
}

func (m *mockPaymentRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockPaymentRepository) Create(p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.store = append(m.store, *p)
	return nil
}

func (m *mockPaymentRepository) FindByUserID(userID uuid.UUID) ([]model.Payment, error) {
	return m.filter(func(p model.Payment) bool { return p.UserID == userID }), nil
}

func (m *mockPaymentRepository) FindByOrderID(orderID uuid.UUID) ([]model.Payment, error) {
	return m.filter(func(p model.Payment) bool { return p.OrderID == orderID }), nil
}

func (m *mockPaymentRepository) filter(match func(model.Payment) bool) []model.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]model.Payment, 0)
	for _, p := range m.store {
		if match(p) {
			result = append(result, p)
		}
	}
	return result
}

type mockUserRepository struct {
	mu    sync.Mutex
	store map[uuid.UUID]*model.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{store: make(map[uuid.UUID]*model.User)}
}

func (m *mockUserRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockUserRepository) Create(u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	val := *u
	m.store[u.ID] = &val
	return nil
}

func (m *mockUserRepository) Update(u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	val := *u
	m.store[u.ID] = &val
	return nil
}

func (m *mockUserRepository) Find(id uuid.UUID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	val := *u
	return &val, nil
}

func (m *mockUserRepository) FindByUsername(username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.store {
		if u.Username == username {
			val := *u
			return &val, nil
		}
	}
	return nil, model.ErrUserNotFound
}

type mockReviewRepository struct {
	mu    sync.Mutex
	store []model.Review
}

func (m *mockReviewRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockReviewRepository) Create(r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = append(m.store, *r)
	return nil
}

func (m *mockReviewRepository) FindByProductID(productID uuid.UUID) ([]model.Review, error) {
	return m.filter(func(r model.Review) bool { return r.ProductID == productID }), nil
}

func (m *mockReviewRepository) FindByUserID(userID uuid.UUID) ([]model.Review, error) {
	return m.filter(func(r model.Review) bool { return r.UserID == userID }), nil
}

func (m *mockReviewRepository) filter(match func(model.Review) bool) []model.Review {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]model.Review, 0)
	for _, r := range m.store {
		if match(r) {
			result = append(result, r)
		}
	}
	return result
}

type mockPasswordManager struct{}

func (mockPasswordManager) Hash(plainTextPassword string) (string, error) {
	return "hashed:" + plainTextPassword, nil
}

func (mockPasswordManager) Check(hashedPassword, plainTextPassword string) (bool, error) {
	return strings.TrimPrefix(hashedPassword, "hashed:") == plainTextPassword, nil
}

// mockGateway replays outcomes in order and repeats the last one when exhausted.
type mockGateway struct {
	mu       sync.Mutex
	outcomes []model.PaymentOutcome
	err      error
	calls    int
}

func (m *mockGateway) Charge(service.ChargeRequest) (service.ChargeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return service.ChargeResult{}, m.err
	}
	outcome := model.OutcomeSuccess
	if len(m.outcomes) > 0 {
		outcome = m.outcomes[0]
		if len(m.outcomes) > 1 {
			m.outcomes = m.outcomes[1:]
		}
	}
	return service.ChargeResult{TransactionID: "txn_" + uuid.NewString(), Outcome: outcome}, nil
}

type mockEventDispatcher struct {
	mu     sync.Mutex
	events []service.Event
}

func (m *mockEventDispatcher) Dispatch(event service.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventDispatcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

func (m *mockEventDispatcher) ofType(eventType string) []service.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []service.Event
	for _, e := range m.events {
		if e.Type() == eventType {
			result = append(result, e)
		}
	}
	return result
}

type mockNotificationRepository struct {
	mu    sync.Mutex
	store map[uuid.UUID]*model.Notification
}

func (m *mockNotificationRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockNotificationRepository) Create(n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	val := *n
	m.store[n.ID] = &val
	return nil
}

func (m *mockNotificationRepository) Update(n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[n.ID]; !ok {
		return errors.New("notification not found")
	}
	val := *n
	m.store[n.ID] = &val
	return nil
}

func (m *mockNotificationRepository) FindByUserID(userID uuid.UUID) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Notification
	for _, n := range m.store {
		if n.UserID == userID {
			result = append(result, *n)
		}
	}
	return result, nil
}

type mockNotificationSender struct {
	mu            sync.Mutex
	ShouldError   bool
	SendCount     int
	LastRecipient string
	LastSubject   string
}

func (m *mockNotificationSender) Send(recipient, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCount++
	m.LastRecipient = recipient
	m.LastSubject = subject
	if m.ShouldError {
		return errors.New("smtp server unavailable")
	}
	return nil
}
