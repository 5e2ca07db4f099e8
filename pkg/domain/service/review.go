package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop/pkg/domain/model"
)

type ReviewService interface {
	SubmitReview(productID, userID uuid.UUID, rating int, comment string) (*model.Review, error)
	GetProductReviews(productID uuid.UUID) ([]model.Review, error)
	GetUserReviews(userID uuid.UUID) ([]model.Review, error)
}

func NewReviewService(
	reviews model.ReviewRepository,
	products model.ProductRepository,
	users model.UserRepository,
	productLocks *KeyedMutex,
	dispatcher EventDispatcher,
) ReviewService {
	return &reviewService{
		reviews:    reviews,
		products:   products,
		users:      users,
		locks:      productLocks,
		dispatcher: dispatcher,
	}
}

type reviewService struct {
	reviews    model.ReviewRepository
	products   model.ProductRepository
	users      model.UserRepository
	locks      *KeyedMutex
	dispatcher EventDispatcher
}

func (s *reviewService) SubmitReview(productID, userID uuid.UUID, rating int, comment string) (*model.Review, error) {
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d, got %d",
			model.ErrInvalidInput, model.MinRating, model.MaxRating, rating)
	}
	if _, err := s.users.Find(userID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(productID)
	defer unlock()

	product, err := s.products.Find(productID)
	if err != nil {
		return nil, err
	}

	reviewID, err := s.reviews.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	review := &model.Review{
		ID:        reviewID,
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(review); err != nil {
		return nil, err
	}

	all, err := s.reviews.FindByProductID(productID)
	if err != nil {
		return nil, err
	}
	product.Rating = averageRating(all)
	product.ReviewsCount = len(all)
	product.Version++
	product.UpdatedAt = now
	if err := s.products.Update(product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ReviewSubmitted{
		ReviewID:  reviewID,
		ProductID: productID,
		Rating:    rating,
		NewRating: product.Rating,
	})
	return review, nil
}

func (s *reviewService) GetProductReviews(productID uuid.UUID) ([]model.Review, error) {
	return s.reviews.FindByProductID(productID)
}

func (s *reviewService) GetUserReviews(userID uuid.UUID) ([]model.Review, error) {
	return s.reviews.FindByUserID(userID)
}

// averageRating is the mean rating rounded to one decimal place.
func averageRating(reviews []model.Review) decimal.Decimal {
	if len(reviews) == 0 {
		return decimal.Zero
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(reviews)))).
		Round(1)
}
