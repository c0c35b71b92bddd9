package repository

import (
	"context"
	"slices"

	"marketplace/internal/domain"
	"marketplace/internal/validation"

	"go.uber.org/zap"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	catalog *Catalog
}

// List returns every product, newest first
func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	r.catalog.mu.RLock()
	defer r.catalog.mu.RUnlock()
	return slices.Clone(r.catalog.doc.Products), nil
}

// Create validates the full payload, assigns id and createdAt and persists
func (r *productRepository) Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	changes, err := validation.Product(input, validation.Full)
	if err != nil {
		return nil, err
	}

	var product domain.Product
	err = r.catalog.mutate(ctx, func(doc *domain.Catalog) error {
		product = domain.Product{
			ID:        r.catalog.newID(domain.ProductIDPrefix),
			CreatedAt: r.catalog.clock.Now(),
		}
		changes.ApplyTo(&product)
		doc.Products = append([]domain.Product{product}, doc.Products...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.catalog.logger.Info("Product created", zap.String("product_id", product.ID))
	return &product, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.catalog.mu.RLock()
	defer r.catalog.mu.RUnlock()

	i := indexOf(r.catalog.doc.Products, id)
	if i < 0 {
		return nil, domain.NewNotFoundError(domain.Products, id)
	}
	product := r.catalog.doc.Products[i]
	return &product, nil
}

// Update merges the present payload fields over an existing product.
// Unknown ids are reported before the payload is validated.
func (r *productRepository) Update(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error) {
	var updated domain.Product
	err := r.catalog.mutate(ctx, func(doc *domain.Catalog) error {
		i := indexOf(doc.Products, id)
		if i < 0 {
			return domain.NewNotFoundError(domain.Products, id)
		}

		changes, err := validation.Product(input, validation.Partial)
		if err != nil {
			return err
		}

		updated = doc.Products[i]
		changes.ApplyTo(&updated)
		doc.Products[i] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.catalog.logger.Info("Product updated", zap.String("product_id", id))
	return &updated, nil
}

// Delete removes a product
func (r *productRepository) Delete(ctx context.Context, id string) error {
	err := r.catalog.mutate(ctx, func(doc *domain.Catalog) error {
		i := indexOf(doc.Products, id)
		if i < 0 {
			return domain.NewNotFoundError(domain.Products, id)
		}
		doc.Products = slices.Delete(doc.Products, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	r.catalog.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}
