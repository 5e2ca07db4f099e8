package catalog

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
)

type SeedProduct struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Price       decimal.Decimal       `json:"price"`
	Stock       int                   `json:"stock"`
	Category    model.ProductCategory `json:"category"`
	ImageURL    string                `json:"imageUrl"`
	SellerID    string                `json:"sellerId"`
}

type Seed struct {
	Products []SeedProduct `json:"products"`
}

// DefaultSeed is the catalog the demo workflow runs against.
func DefaultSeed() Seed {
	return Seed{Products: []SeedProduct{
		{
			Name:        "Wireless Headphones",
			Description: "High-quality noise-cancelling headphones.",
			Price:       decimal.RequireFromString("199.99"),
			Stock:       50,
			Category:    model.Electronics,
			ImageURL:    "http://example.com/hp.jpg",
			SellerID:    "seller_admin_1",
		},
		{
			Name:        "TypeScript Deep Dive",
			Description: "Comprehensive guide to TypeScript.",
			Price:       decimal.RequireFromString("39.99"),
			Stock:       100,
			Category:    model.Books,
			ImageURL:    "http://example.com/ts_book.jpg",
			SellerID:    "seller_admin_1",
		},
	}}
}

func Load(filePath string) (Seed, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return Seed{}, err
	}

	var seed Seed
	if err := json.Unmarshal(file, &seed); err != nil {
		return Seed{}, errors.Wrapf(err, "failed to parse catalog seed %s", filePath)
	}
	return seed, nil
}

func Save(filePath string, seed Seed) error {
	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0666)
}

// Apply adds every seed product to the catalog and stops at the first rejection.
func Apply(products service.ProductService, seed Seed) ([]model.Product, error) {
	added := make([]model.Product, 0, len(seed.Products))
	for _, p := range seed.Products {
		product, err := products.AddProduct(service.ProductInput{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			Category:    p.Category,
			ImageURL:    p.ImageURL,
			SellerID:    p.SellerID,
		})
		if err != nil {
			return added, errors.Wrapf(err, "seed product %q", p.Name)
		}
		log.WithFields(log.Fields{"product_id": product.ID, "name": product.Name}).Info("seeded product")
		added = append(added, *product)
	}
	return added, nil
}
