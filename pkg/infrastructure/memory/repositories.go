package memory

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"shop/pkg/domain/model"
)

func nextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

// notFound maps the collection miss to the domain sentinel of the entity.
func notFound(err, sentinel error) error {
	if errors.Is(err, ErrEntityNotFound) {
		return sentinel
	}
	return err
}

// checkVersion accepts only the version that directly follows the stored one.
func checkVersion(stored, next int) error {
	if stored != next-1 {
		return model.ErrOptimisticLock
	}
	return nil
}

type ProductRepository struct {
	products *Collection[model.Product]
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: NewCollection(Meta[model.Product]{
		ID: func(p *model.Product) *uuid.UUID { return &p.ID },
		Stamps: func(p *model.Product) (*time.Time, *time.Time) {
			return &p.CreatedAt, &p.UpdatedAt
		},
	})}
}

func (r *ProductRepository) NextID() (uuid.UUID, error) { return nextID() }

func (r *ProductRepository) Create(product *model.Product) error {
	return r.products.Create(product)
}

func (r *ProductRepository) Update(product *model.Product) error {
	_, err := r.products.UpdateByID(product.ID, func(stored *model.Product) error {
		if err := checkVersion(stored.Version, product.Version); err != nil {
			return err
		}
		*stored = *product
		return nil
	})
	return notFound(err, model.ErrProductNotFound)
}

func (r *ProductRepository) Find(id uuid.UUID) (*model.Product, error) {
	product, err := r.products.GetByID(id)
	if err != nil {
		return nil, notFound(err, model.ErrProductNotFound)
	}
	return &product, nil
}

func (r *ProductRepository) FindAll() ([]model.Product, error) {
	return r.products.FindBy(All[model.Product]), nil
}

func (r *ProductRepository) FindByCategory(category model.ProductCategory) ([]model.Product, error) {
	return r.products.FindBy(func(p model.Product) bool { return p.Category == category }), nil
}

func (r *ProductRepository) Delete(id uuid.UUID) error {
	if !r.products.DeleteByID(id) {
		return model.ErrProductNotFound
	}
	return nil
}

type OrderRepository struct {
	orders *Collection[model.Order]
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: NewCollection(Meta[model.Order]{
		ID: func(o *model.Order) *uuid.UUID { return &o.ID },
		Stamps: func(o *model.Order) (*time.Time, *time.Time) {
			return &o.CreatedAt, &o.UpdatedAt
		},
		Clone: model.Order.Clone,
	})}
}

func (r *OrderRepository) NextID() (uuid.UUID, error) { return nextID() }

func (r *OrderRepository) Create(order *model.Order) error {
	return r.orders.Create(order)
}

func (r *OrderRepository) Find(id uuid.UUID) (*model.Order, error) {
	order, err := r.orders.GetByID(id)
	if err != nil {
		return nil, notFound(err, model.ErrOrderNotFound)
	}
	return &order, nil
}

func (r *OrderRepository) FindByUserID(userID uuid.UUID) ([]model.Order, error) {
	return r.orders.FindBy(func(o model.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) Update(order *model.Order) error {
	_, err := r.orders.UpdateByID(order.ID, func(stored *model.Order) error {
		if err := checkVersion(stored.Version, order.Version); err != nil {
			return err
		}
		*stored = order.Clone()
		return nil
	})
	return notFound(err, model.ErrOrderNotFound)
}

type PaymentRepository struct {
	payments *Collection[model.Payment]
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: NewCollection(Meta[model.Payment]{
		ID: func(p *model.Payment) *uuid.UUID { return &p.ID },
		Stamps: func(p *model.Payment) (*time.Time, *time.Time) {
			// Payments are immutable, so creation doubles as the update stamp.
			return &p.CreatedAt, &p.CreatedAt
		},
	})}
}

func (r *PaymentRepository) NextID() (uuid.UUID, error) { return nextID() }

func (r *PaymentRepository) Create(payment *model.Payment) error {
	return r.payments.Create(payment)
}

func (r *PaymentRepository) FindByUserID(userID uuid.UUID) ([]model.Payment, error) {
	return r.payments.FindBy(func(p model.Payment) bool { return p.UserID == userID }), nil
}

func (r *PaymentRepository) FindByOrderID(orderID uuid.UUID) ([]model.Payment, error) {
	return r.payments.FindBy(func(p model.Payment) bool { return p.OrderID == orderID }), nil
}

type UserRepository struct {
	users *Collection[model.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: NewCollection(Meta[model.User]{
		ID: func(u *model.User) *uuid.UUID { return &u.ID },
		Stamps: func(u *model.User) (*time.Time, *time.Time) {
			return &u.CreatedAt, &u.UpdatedAt
		},
	})}
}

func (r *UserRepository) NextID() (uuid.UUID, error) { return nextID() }

func (r *UserRepository) Create(user *model.User) error {
	return r.users.Create(user)
}

func (r *UserRepository) Update(user *model.User) error {
	_, err := r.users.UpdateByID(user.ID, func(stored *model.User) error {
		*stored = *user
		return nil
	})
	return notFound(err, model.ErrUserNotFound)
}

func (r *UserRepository) Find(id uuid.UUID) (*model.User, error) {
	user, err := r.users.GetByID(id)
	if err != nil {
		return nil, notFound(err, model.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	user, err := r.users.FindOne(func(u model.User) bool { return u.Username == username })
	if err != nil {
		return nil, notFound(err, model.ErrUserNotFound)
	}
	return &user, nil
}

type ReviewRepository struct {
	reviews *Collection[model.Review]
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{reviews: NewCollection(Meta[model.Review]{
		ID: func(r *model.Review) *uuid.UUID { return &r.ID },
		Stamps: func(r *model.Review) (*time.Time, *time.Time) {
			return &r.CreatedAt, &r.UpdatedAt
		},
	})}
}

func (r *ReviewRepository) NextID() (uuid.UUID, error) { return nextID() }

func (r *ReviewRepository) Create(review *model.Review) error {
	return r.reviews.Create(review)
}

func (r *ReviewRepository) FindByProductID(productID uuid.UUID) ([]model.Review, error) {
	return r.reviews.FindBy(func(rv model.Review) bool { return rv.ProductID == productID }), nil
}

func (r *ReviewRepository) FindByUserID(userID uuid.UUID) ([]model.Review, error) {
	return r.reviews.FindBy(func(rv model.Review) bool { return rv.UserID == userID }), nil
}

type NotificationRepository struct {
	notifications *Collection[model.Notification]
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: NewCollection(Meta[model.Notification]{
		ID: func(n *model.Notification) *uuid.UUID { return &n.ID },
		Stamps: func(n *model.Notification) (*time.Time, *time.Time) {
			return &n.CreatedAt, &n.UpdatedAt
		},
		Clone: func(n model.Notification) model.Notification {
			if n.SentAt != nil {
				sentAt := *n.SentAt
				n.SentAt = &sentAt
			}
			return n
		},
	})}
}

func (r *NotificationRepository) NextID() (uuid.UUID, error) { return nextID() }

func (r *NotificationRepository) Create(notification *model.Notification) error {
	return r.notifications.Create(notification)
}

func (r *NotificationRepository) Update(notification *model.Notification) error {
	_, err := r.notifications.UpdateByID(notification.ID, func(stored *model.Notification) error {
		*stored = *notification
		return nil
	})
	return err
}

func (r *NotificationRepository) FindByUserID(userID uuid.UUID) ([]model.Notification, error) {
	return r.notifications.FindBy(func(n model.Notification) bool { return n.UserID == userID }), nil
}
