package mysql

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop/pkg/domain/model"
)

// jsonColumn stores a value as a MySQL JSON column.
type jsonColumn[T any] struct {
	V T
}

func (c jsonColumn[T]) Value() (driver.Value, error) {
	return json.Marshal(c.V)
}

func (c *jsonColumn[T]) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, &c.V)
	case string:
		return json.Unmarshal([]byte(v), &c.V)
	case nil:
		return nil
	}
	return fmt.Errorf("unsupported json column type %T", src)
}

type productRow struct {
	ID           uuid.UUID       `db:"id"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	Price        decimal.Decimal `db:"price"`
	Stock        int             `db:"stock"`
	Category     string          `db:"category"`
	Rating       decimal.Decimal `db:"rating"`
	ReviewsCount int             `db:"reviews_count"`
	ImageURL     string          `db:"image_url"`
	SellerID     string          `db:"seller_id"`
	Version      int             `db:"version"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func newProductRow(p *model.Product) productRow {
	return productRow{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Stock:        p.Stock,
		Category:     string(p.Category),
		Rating:       p.Rating,
		ReviewsCount: p.ReviewsCount,
		ImageURL:     p.ImageURL,
		SellerID:     p.SellerID,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r productRow) toModel() model.Product {
	return model.Product{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Stock:        r.Stock,
		Category:     model.ProductCategory(r.Category),
		Rating:       r.Rating,
		ReviewsCount: r.ReviewsCount,
		ImageURL:     r.ImageURL,
		SellerID:     r.SellerID,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type orderRow struct {
	ID              uuid.UUID                     `db:"id"`
	UserID          uuid.UUID                     `db:"user_id"`
	Items           jsonColumn[[]model.OrderItem] `db:"items"`
	TotalAmount     decimal.Decimal               `db:"total_amount"`
	Status          string                        `db:"status"`
	PaymentStatus   string                        `db:"payment_status"`
	ShippingAddress jsonColumn[model.Address]     `db:"shipping_address"`
	PaymentMethod   string                        `db:"payment_method"`
	ShippedAt       sql.NullTime                  `db:"shipped_at"`
	DeliveredAt     sql.NullTime                  `db:"delivered_at"`
	StockReleased   bool                          `db:"stock_released"`
	Version         int                           `db:"version"`
	CreatedAt       time.Time                     `db:"created_at"`
	UpdatedAt       time.Time                     `db:"updated_at"`
}

func newOrderRow(o *model.Order) orderRow {
	return orderRow{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           jsonColumn[[]model.OrderItem]{V: o.Items},
		TotalAmount:     o.TotalAmount,
		Status:          o.Status.String(),
		PaymentStatus:   o.PaymentStatus.String(),
		ShippingAddress: jsonColumn[model.Address]{V: o.ShippingAddress},
		PaymentMethod:   string(o.PaymentMethod),
		ShippedAt:       nullTime(o.ShippedAt),
		DeliveredAt:     nullTime(o.DeliveredAt),
		StockReleased:   o.StockReleased,
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (r orderRow) toModel() (model.Order, error) {
	status, err := model.ParseOrderStatus(r.Status)
	if err != nil {
		return model.Order{}, err
	}
	paymentStatus := model.Unpaid
	if r.PaymentStatus == model.Paid.String() {
		paymentStatus = model.Paid
	}
	return model.Order{
		ID:              r.ID,
		UserID:          r.UserID,
		Items:           r.Items.V,
		TotalAmount:     r.TotalAmount,
		Status:          status,
		PaymentStatus:   paymentStatus,
		ShippingAddress: r.ShippingAddress.V,
		PaymentMethod:   model.PaymentMethod(r.PaymentMethod),
		ShippedAt:       timePtr(r.ShippedAt),
		DeliveredAt:     timePtr(r.DeliveredAt),
		StockReleased:   r.StockReleased,
		Version:         r.Version,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}

type paymentRow struct {
	ID            uuid.UUID       `db:"id"`
	OrderID       uuid.UUID       `db:"order_id"`
	UserID        uuid.UUID       `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	Method        string          `db:"method"`
	TransactionID string          `db:"transaction_id"`
	Outcome       string          `db:"outcome"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (r paymentRow) toModel() model.Payment {
	outcome := model.OutcomeFailed
	if r.Outcome == model.OutcomeSuccess.String() {
		outcome = model.OutcomeSuccess
	}
	return model.Payment{
		ID:            r.ID,
		OrderID:       r.OrderID,
		UserID:        r.UserID,
		Amount:        r.Amount,
		Method:        model.PaymentMethod(r.Method),
		TransactionID: r.TransactionID,
		Outcome:       outcome,
		CreatedAt:     r.CreatedAt,
	}
}

type userRow struct {
	ID           uuid.UUID                 `db:"id"`
	Username     string                    `db:"username"`
	Email        string                    `db:"email"`
	PasswordHash string                    `db:"password_hash"`
	Role         string                    `db:"role"`
	Address      jsonColumn[model.Address] `db:"address"`
	CreatedAt    time.Time                 `db:"created_at"`
	UpdatedAt    time.Time                 `db:"updated_at"`
}

func newUserRow(u *model.User) userRow {
	return userRow{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Address:      jsonColumn[model.Address]{V: u.Address},
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRow) toModel() model.User {
	return model.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         model.UserRole(r.Role),
		Address:      r.Address.V,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type reviewRow struct {
	ID        uuid.UUID `db:"id"`
	ProductID uuid.UUID `db:"product_id"`
	UserID    uuid.UUID `db:"user_id"`
	Rating    int       `db:"rating"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r reviewRow) toModel() model.Review {
	return model.Review(r)
}

type notificationRow struct {
	ID            uuid.UUID    `db:"id"`
	UserID        uuid.UUID    `db:"user_id"`
	Recipient     string       `db:"recipient"`
	Subject       string       `db:"subject"`
	Body          string       `db:"body"`
	Status        string       `db:"status"`
	FailureReason string       `db:"failure_reason"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
	SentAt        sql.NullTime `db:"sent_at"`
}

func newNotificationRow(n *model.Notification) notificationRow {
	return notificationRow{
		ID:            n.ID,
		UserID:        n.UserID,
		Recipient:     n.Recipient,
		Subject:       n.Subject,
		Body:          n.Body,
		Status:        n.Status.String(),
		FailureReason: n.FailureReason,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
		SentAt:        nullTime(n.SentAt),
	}
}

func (r notificationRow) toModel() model.Notification {
	status := model.NotificationPending
	switch r.Status {
	case model.NotificationSent.String():
		status = model.NotificationSent
	case model.NotificationFailed.String():
		status = model.NotificationFailed
	}
	return model.Notification{
		ID:            r.ID,
		UserID:        r.UserID,
		Recipient:     r.Recipient,
		Subject:       r.Subject,
		Body:          r.Body,
		Status:        status,
		FailureReason: r.FailureReason,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		SentAt:        timePtr(r.SentAt),
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
