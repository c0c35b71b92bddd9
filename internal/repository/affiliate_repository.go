package repository

import (
	"context"
	"slices"

	"marketplace/internal/domain"
	"marketplace/internal/validation"

	"go.uber.org/zap"
)

// AffiliateRepository defines the interface for affiliate data access
type AffiliateRepository interface {
	List(ctx context.Context) ([]domain.Affiliate, error)
	Create(ctx context.Context, input domain.AffiliateInput) (*domain.Affiliate, error)
	FindByID(ctx context.Context, id string) (*domain.Affiliate, error)
	Update(ctx context.Context, id string, input domain.AffiliateInput) (*domain.Affiliate, error)
	Delete(ctx context.Context, id string) error
}

type affiliateRepository struct {
	catalog *Catalog
}

// List returns every affiliate, newest first
func (r *affiliateRepository) List(ctx context.Context) ([]domain.Affiliate, error) {
	r.catalog.mu.RLock()
	defer r.catalog.mu.RUnlock()
	return slices.Clone(r.catalog.doc.Affiliates), nil
}

// Create validates the full payload, assigns id and createdAt and persists
func (r *affiliateRepository) Create(ctx context.Context, input domain.AffiliateInput) (*domain.Affiliate, error) {
	changes, err := validation.Affiliate(input, validation.Full)
	if err != nil {
		return nil, err
	}

	var affiliate domain.Affiliate
	err = r.catalog.mutate(ctx, func(doc *domain.Catalog) error {
		affiliate = domain.Affiliate{
			ID:        r.catalog.newID(domain.AffiliateIDPrefix),
			CreatedAt: r.catalog.clock.Now(),
		}
		changes.ApplyTo(&affiliate)
		doc.Affiliates = append([]domain.Affiliate{affiliate}, doc.Affiliates...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.catalog.logger.Info("Affiliate created", zap.String("affiliate_id", affiliate.ID))
	return &affiliate, nil
}

// FindByID retrieves an affiliate by ID
func (r *affiliateRepository) FindByID(ctx context.Context, id string) (*domain.Affiliate, error) {
	r.catalog.mu.RLock()
	defer r.catalog.mu.RUnlock()

	i := indexOf(r.catalog.doc.Affiliates, id)
	if i < 0 {
		return nil, domain.NewNotFoundError(domain.Affiliates, id)
	}
	affiliate := r.catalog.doc.Affiliates[i]
	return &affiliate, nil
}

// Update merges the present payload fields over an existing affiliate.
// Unknown ids are reported before the payload is validated.
func (r *affiliateRepository) Update(ctx context.Context, id string, input domain.AffiliateInput) (*domain.Affiliate, error) {
	var updated domain.Affiliate
	err := r.catalog.mutate(ctx, func(doc *domain.Catalog) error {
		i := indexOf(doc.Affiliates, id)
		if i < 0 {
			return domain.NewNotFoundError(domain.Affiliates, id)
		}

		changes, err := validation.Affiliate(input, validation.Partial)
		if err != nil {
			return err
		}

		updated = doc.Affiliates[i]
		changes.ApplyTo(&updated)
		doc.Affiliates[i] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.catalog.logger.Info("Affiliate updated", zap.String("affiliate_id", id))
	return &updated, nil
}

// Delete removes an affiliate
func (r *affiliateRepository) Delete(ctx context.Context, id string) error {
	err := r.catalog.mutate(ctx, func(doc *domain.Catalog) error {
		i := indexOf(doc.Affiliates, id)
		if i < 0 {
			return domain.NewNotFoundError(domain.Affiliates, id)
		}
		doc.Affiliates = slices.Delete(doc.Affiliates, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	r.catalog.logger.Info("Affiliate deleted", zap.String("affiliate_id", id))
	return nil
}
