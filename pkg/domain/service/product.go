package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop/pkg/domain/model"
)

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    model.ProductCategory
	ImageURL    string
	SellerID    string
}

// ProductChanges holds a partial update. Nil fields are left untouched.
type ProductChanges struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *model.ProductCategory
	ImageURL    *string
}

type ProductService interface {
	AddProduct(input ProductInput) (*model.Product, error)
	GetProduct(productID uuid.UUID) (*model.Product, error)
	ListProducts(category model.ProductCategory) ([]model.Product, error)
	UpdateProduct(productID uuid.UUID, changes ProductChanges) (*model.Product, error)
	ReceiveStock(productID uuid.UUID, quantity int) error
	DeleteProduct(productID uuid.UUID) error
}

func NewProductService(repo model.ProductRepository, ledger InventoryLedger, productLocks *KeyedMutex, dispatcher EventDispatcher) ProductService {
	return &productService{repo: repo, ledger: ledger, locks: productLocks, dispatcher: dispatcher}
}

type productService struct {
	repo       model.ProductRepository
	ledger     InventoryLedger
	locks      *KeyedMutex
	dispatcher EventDispatcher
}

func (s *productService) AddProduct(input ProductInput) (*model.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: product name is required", model.ErrInvalidInput)
	}
	if !input.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", model.ErrInvalidInput)
	}
	if input.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", model.ErrInvalidInput)
	}
	if !input.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", model.ErrInvalidInput, input.Category)
	}

	productID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:          productID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    input.Category,
		Rating:      decimal.Zero,
		ImageURL:    input.ImageURL,
		SellerID:    input.SellerID,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductCreated{ProductID: productID, Name: product.Name, Stock: product.Stock})
	return product, nil
}

func (s *productService) GetProduct(productID uuid.UUID) (*model.Product, error) {
	return s.repo.Find(productID)
}

// ListProducts returns every product when category is empty.
func (s *productService) ListProducts(category model.ProductCategory) ([]model.Product, error) {
	if category == "" {
		return s.repo.FindAll()
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", model.ErrInvalidInput, category)
	}
	return s.repo.FindByCategory(category)
}

func (s *productService) UpdateProduct(productID uuid.UUID, changes ProductChanges) (*model.Product, error) {
	unlock := s.locks.Lock(productID)
	defer unlock()

	product, err := s.repo.Find(productID)
	if err != nil {
		return nil, err
	}

	oldPrice := product.Price
	if changes.Name != nil {
		if strings.TrimSpace(*changes.Name) == "" {
			return nil, fmt.Errorf("%w: product name is required", model.ErrInvalidInput)
		}
		product.Name = *changes.Name
	}
	if changes.Description != nil {
		product.Description = *changes.Description
	}
	if changes.Price != nil {
		if !changes.Price.IsPositive() {
			return nil, fmt.Errorf("%w: price must be positive", model.ErrInvalidInput)
		}
		product.Price = *changes.Price
	}
	if changes.Category != nil {
		if !changes.Category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", model.ErrInvalidInput, *changes.Category)
		}
		product.Category = *changes.Category
	}
	if changes.ImageURL != nil {
		product.ImageURL = *changes.ImageURL
	}

	if err := s.updateProduct(product); err != nil {
		return nil, err
	}

	if !oldPrice.Equal(product.Price) {
		_ = s.dispatcher.Dispatch(model.ProductPriceChanged{
			ProductID: productID,
			OldPrice:  oldPrice,
			NewPrice:  product.Price,
		})
	}
	return product, nil
}

func (s *productService) ReceiveStock(productID uuid.UUID, quantity int) error {
	return s.ledger.Restore(productID, quantity)
}

func (s *productService) DeleteProduct(productID uuid.UUID) error {
	unlock := s.locks.Lock(productID)
	defer unlock()

	if err := s.repo.Delete(productID); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductDeleted{ProductID: productID})
	return nil
}

func (s *productService) updateProduct(product *model.Product) error {
	product.Version++
	product.UpdatedAt = time.Now().UTC()
	return s.repo.Update(product)
}
