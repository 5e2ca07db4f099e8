package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductCategory string

const (
	Electronics    ProductCategory = "Electronics"
	Books          ProductCategory = "Books"
	HomeAppliances ProductCategory = "Home Appliances"
	Clothing       ProductCategory = "Clothing"
	Food           ProductCategory = "Food"
	Sports         ProductCategory = "Sports"
)

func (c ProductCategory) Valid() bool {
	switch c {
	case Electronics, Books, HomeAppliances, Clothing, Food, Sports:
		return true
	}
	return false
}

type Product struct {
	ID           uuid.UUID
	Name         string
	Description  string
	Price        decimal.Decimal
	Stock        int
	Category     ProductCategory
	Rating       decimal.Decimal
	ReviewsCount int
	ImageURL     string
	SellerID     string
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ProductRepository interface {
	NextID() (uuid.UUID, error)
	Create(product *Product) error
	Update(product *Product) error
	Find(id uuid.UUID) (*Product, error)
	FindAll() ([]Product, error)
	FindByCategory(category ProductCategory) ([]Product, error)
	Delete(id uuid.UUID) error
}
