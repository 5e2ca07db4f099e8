package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ReviewRepository interface {
	NextID() (uuid.UUID, error)
	Create(review *Review) error
	FindByProductID(productID uuid.UUID) ([]Review, error)
	FindByUserID(userID uuid.UUID) ([]Review, error)
}
