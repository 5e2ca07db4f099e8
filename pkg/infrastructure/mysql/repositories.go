package mysql

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"shop/pkg/domain/model"
)

// updateVersioned runs an optimistic update and tells a missing row apart
// from a concurrent modification.
func updateVersioned(db *sqlx.DB, table, query string, arg any, id uuid.UUID, notFound error) error {
	result, err := db.NamedExec(query, arg)
	if err != nil {
		return errors.Wrapf(err, "failed to update %s", table)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = ?)", id); err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return notFound
	}
	return model.ErrOptimisticLock
}

type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *ProductRepository) Create(product *model.Product) error {
	_, err := r.db.NamedExec(`
		INSERT INTO products (id, name, description, price, stock, category, rating, reviews_count,
		                      image_url, seller_id, version, created_at, updated_at)
		VALUES (:id, :name, :description, :price, :stock, :category, :rating, :reviews_count,
		        :image_url, :seller_id, :version, :created_at, :updated_at)`,
		newProductRow(product))
	return errors.Wrap(err, "failed to insert product")
}

func (r *ProductRepository) Update(product *model.Product) error {
	return updateVersioned(r.db, "products", `
		UPDATE products
		SET name = :name, description = :description, price = :price, stock = :stock,
		    category = :category, rating = :rating, reviews_count = :reviews_count,
		    image_url = :image_url, seller_id = :seller_id, version = :version, updated_at = :updated_at
		WHERE id = :id AND version = :version - 1`,
		newProductRow(product), product.ID, model.ErrProductNotFound)
}

func (r *ProductRepository) Find(id uuid.UUID) (*model.Product, error) {
	var row productRow
	err := r.db.Get(&row, "SELECT * FROM products WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load product")
	}
	product := row.toModel()
	return &product, nil
}

func (r *ProductRepository) FindAll() ([]model.Product, error) {
	return r.selectProducts("SELECT * FROM products ORDER BY created_at")
}

func (r *ProductRepository) FindByCategory(category model.ProductCategory) ([]model.Product, error) {
	return r.selectProducts("SELECT * FROM products WHERE category = ? ORDER BY created_at", string(category))
}

func (r *ProductRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "failed to delete product")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) selectProducts(query string, args ...any) ([]model.Product, error) {
	var rows []productRow
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toModel())
	}
	return products, nil
}

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *OrderRepository) Create(order *model.Order) error {
	_, err := r.db.NamedExec(`
		INSERT INTO orders (id, user_id, items, total_amount, status, payment_status, shipping_address,
		                    payment_method, shipped_at, delivered_at, stock_released, version, created_at, updated_at)
		VALUES (:id, :user_id, :items, :total_amount, :status, :payment_status, :shipping_address,
		        :payment_method, :shipped_at, :delivered_at, :stock_released, :version, :created_at, :updated_at)`,
		newOrderRow(order))
	return errors.Wrap(err, "failed to insert order")
}

func (r *OrderRepository) Find(id uuid.UUID) (*model.Order, error) {
	var row orderRow
	err := r.db.Get(&row, "SELECT * FROM orders WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load order")
	}
	order, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) FindByUserID(userID uuid.UUID) ([]model.Order, error) {
	var rows []orderRow
	if err := r.db.Select(&rows, "SELECT * FROM orders WHERE user_id = ? ORDER BY created_at", userID); err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	orders := make([]model.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *OrderRepository) Update(order *model.Order) error {
	return updateVersioned(r.db, "orders", `
		UPDATE orders
		SET status = :status, payment_status = :payment_status, shipping_address = :shipping_address,
		    shipped_at = :shipped_at, delivered_at = :delivered_at, stock_released = :stock_released,
		    version = :version, updated_at = :updated_at
		WHERE id = :id AND version = :version - 1`,
		newOrderRow(order), order.ID, model.ErrOrderNotFound)
}

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *PaymentRepository) Create(payment *model.Payment) error {
	_, err := r.db.Exec(`
		INSERT INTO payments (id, order_id, user_id, amount, method, transaction_id, outcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.OrderID, payment.UserID, payment.Amount, string(payment.Method),
		payment.TransactionID, payment.Outcome.String(), payment.CreatedAt)
	return errors.Wrap(err, "failed to insert payment")
}

func (r *PaymentRepository) FindByUserID(userID uuid.UUID) ([]model.Payment, error) {
	return r.selectPayments("SELECT * FROM payments WHERE user_id = ? ORDER BY created_at", userID)
}

func (r *PaymentRepository) FindByOrderID(orderID uuid.UUID) ([]model.Payment, error) {
	return r.selectPayments("SELECT * FROM payments WHERE order_id = ? ORDER BY created_at", orderID)
}

func (r *PaymentRepository) selectPayments(query string, arg any) ([]model.Payment, error) {
	var rows []paymentRow
	if err := r.db.Select(&rows, query, arg); err != nil {
		return nil, errors.Wrap(err, "failed to list payments")
	}
	payments := make([]model.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, row.toModel())
	}
	return payments, nil
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *UserRepository) Create(user *model.User) error {
	_, err := r.db.NamedExec(`
		INSERT INTO users (id, username, email, password_hash, role, address, created_at, updated_at)
		VALUES (:id, :username, :email, :password_hash, :role, :address, :created_at, :updated_at)`,
		newUserRow(user))
	if isDuplicate(err) {
		return model.ErrDuplicate
	}
	return errors.Wrap(err, "failed to insert user")
}

func (r *UserRepository) Update(user *model.User) error {
	result, err := r.db.NamedExec(`
		UPDATE users
		SET email = :email, password_hash = :password_hash, role = :role, address = :address, updated_at = :updated_at
		WHERE id = :id`,
		newUserRow(user))
	if err != nil {
		return errors.Wrap(err, "failed to update user")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		if _, err := r.Find(user.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepository) Find(id uuid.UUID) (*model.User, error) {
	return r.getUser("SELECT * FROM users WHERE id = ?", id)
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	return r.getUser("SELECT * FROM users WHERE username = ?", username)
}

func (r *UserRepository) getUser(query string, arg any) (*model.User, error) {
	var row userRow
	err := r.db.Get(&row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}
	user := row.toModel()
	return &user, nil
}

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *ReviewRepository) Create(review *model.Review) error {
	_, err := r.db.Exec(`
		INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID, review.ProductID, review.UserID, review.Rating, review.Comment, review.CreatedAt, review.UpdatedAt)
	return errors.Wrap(err, "failed to insert review")
}

func (r *ReviewRepository) FindByProductID(productID uuid.UUID) ([]model.Review, error) {
	return r.selectReviews("SELECT * FROM reviews WHERE product_id = ? ORDER BY created_at", productID)
}

func (r *ReviewRepository) FindByUserID(userID uuid.UUID) ([]model.Review, error) {
	return r.selectReviews("SELECT * FROM reviews WHERE user_id = ? ORDER BY created_at", userID)
}

func (r *ReviewRepository) selectReviews(query string, arg any) ([]model.Review, error) {
	var rows []reviewRow
	if err := r.db.Select(&rows, query, arg); err != nil {
		return nil, errors.Wrap(err, "failed to list reviews")
	}
	reviews := make([]model.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, row.toModel())
	}
	return reviews, nil
}

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *NotificationRepository) Create(notification *model.Notification) error {
	_, err := r.db.NamedExec(`
		INSERT INTO notifications (id, user_id, recipient, subject, body, status, failure_reason, created_at, updated_at, sent_at)
		VALUES (:id, :user_id, :recipient, :subject, :body, :status, :failure_reason, :created_at, :updated_at, :sent_at)`,
		newNotificationRow(notification))
	return errors.Wrap(err, "failed to insert notification")
}

func (r *NotificationRepository) Update(notification *model.Notification) error {
	_, err := r.db.NamedExec(`
		UPDATE notifications
		SET status = :status, failure_reason = :failure_reason, updated_at = :updated_at, sent_at = :sent_at
		WHERE id = :id`,
		newNotificationRow(notification))
	return errors.Wrap(err, "failed to update notification")
}

func (r *NotificationRepository) FindByUserID(userID uuid.UUID) ([]model.Notification, error) {
	var rows []notificationRow
	if err := r.db.Select(&rows, "SELECT * FROM notifications WHERE user_id = ? ORDER BY created_at", userID); err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}
	notifications := make([]model.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, row.toModel())
	}
	return notifications, nil
}
