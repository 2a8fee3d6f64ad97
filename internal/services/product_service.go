package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bh1mart/bh1mart/internal/models"
)

// ProductStore is the persistence interface for the catalog.
type ProductStore interface {
	List(ctx context.Context) ([]*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// ProductService manages the store catalog.
type ProductService struct {
	products ProductStore
	logger   *slog.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products ProductStore, logger *slog.Logger) *ProductService {
	return &ProductService{products: products, logger: logger}
}

// List returns the catalog ordered for display.
func (s *ProductService) List(ctx context.Context) ([]*models.Product, error) {
	return s.products.List(ctx)
}

// Create adds a product.
func (s *ProductService) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p.Name == "" || p.Price <= 0 {
		return nil, fmt.Errorf("%w: product needs a name and a positive price", models.ErrBadRequest)
	}
	return s.products.Create(ctx, p)
}

// Update overwrites a product's mutable fields.
func (s *ProductService) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: missing product id", models.ErrBadRequest)
	}
	return s.products.Update(ctx, p)
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// Seed populates the initial catalog. Refuses to run when any products
// already exist so it stays a one-time setup action.
func (s *ProductService) Seed(ctx context.Context) (int, error) {
	count, err := s.products.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check catalog size: %w", err)
	}
	if count > 0 {
		return 0, fmt.Errorf("%w: catalog already has %d products", models.ErrConflict, count)
	}

	seeded := 0
	for _, p := range seedCatalog {
		product := p
		if _, err := s.products.Create(ctx, &product); err != nil {
			return seeded, fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
		seeded++
	}

	s.logger.Info("catalog seeded", slog.Int("products", seeded))
	return seeded, nil
}

var seedCatalog = []models.Product{
	{Name: "Maggi", Category: "Noodles", Price: 30, Image: "/maggie.jpeg", Priority: 1, InStock: true},
	{Name: "Kurkure", Category: "Snacks", Price: 35, Image: "/kurkure.jpeg", Priority: 2, InStock: true},
	{Name: "Maggi Cup Noodles", Category: "Noodles", Price: 85, Image: "/maggi-cup-noodles.jpeg", Priority: 3, InStock: true},
	{Name: "Blue Lays", Category: "Chips", Price: 65, Image: "/blue-lays.jpeg", Priority: 4, InStock: true},
	{Name: "Dark Fantasy", Category: "Biscuits", Price: 40, Image: "/dark-fantasy.jpeg", Priority: 5, InStock: true},
	{Name: "Oreo Strawberry", Category: "Biscuits", Price: 45, Image: "/oreo-strawberry.jpeg", Priority: 6, InStock: true},
	{Name: "Ramen Chicken", Category: "Noodles", Price: 70, Image: "/ramen-chicken.jpeg", Priority: 7, InStock: true},
	{Name: "Ramen Veg", Category: "Noodles", Price: 73, Image: "/ramen-veg.jpeg", Priority: 8, InStock: true},
	{Name: "TooYumm Bhoot", Category: "Chips", Price: 67, Image: "/tooyumm-bhoot.jpeg", Priority: 9, InStock: true},
	{Name: "TooYumm Onion", Category: "Chips", Price: 67, Image: "/tooyumm-onion.jpeg", Priority: 10, InStock: true},
	{Name: "Mad Angles", Category: "Snacks", Price: 65, Image: "/mad-angles.jpeg", Priority: 11, InStock: true},
	{Name: "Bikaji Bhel", Category: "Snacks", Price: 63, Image: "/bikaji-bhel.jpeg", Priority: 12, InStock: true},
}
