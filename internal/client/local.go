package client

import (
	"context"

	"marketplace/internal/domain"
	"marketplace/internal/repository"
	"marketplace/internal/storage"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// LocalBackend serves a seeded catalog held in memory. Changes last for the
// lifetime of the process.
type LocalBackend struct {
	products   repository.ProductRepository
	affiliates repository.AffiliateRepository
}

// NewLocalBackend seeds an in-memory store and opens a catalog over it.
func NewLocalBackend(ctx context.Context, seed storage.SeedFunc, logger *zap.Logger, opts ...repository.Option) (*LocalBackend, error) {
	store := storage.NewMemoryStore()
	if err := store.Initialize(ctx, seed); err != nil {
		return nil, errors.Wrap(err, "seed local store")
	}
	catalog, err := repository.NewCatalog(ctx, store, logger, opts...)
	if err != nil {
		return nil, err
	}
	return &LocalBackend{
		products:   catalog.Products(),
		affiliates: catalog.Affiliates(),
	}, nil
}

func (b *LocalBackend) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return b.products.List(ctx)
}

func (b *LocalBackend) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	return b.products.Create(ctx, input)
}

func (b *LocalBackend) UpdateProduct(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error) {
	return b.products.Update(ctx, id, input)
}

func (b *LocalBackend) DeleteProduct(ctx context.Context, id string) error {
	return b.products.Delete(ctx, id)
}

func (b *LocalBackend) ListAffiliates(ctx context.Context) ([]domain.Affiliate, error) {
	return b.affiliates.List(ctx)
}

func (b *LocalBackend) CreateAffiliate(ctx context.Context, input domain.AffiliateInput) (*domain.Affiliate, error) {
	return b.affiliates.Create(ctx, input)
}

func (b *LocalBackend) UpdateAffiliate(ctx context.Context, id string, input domain.AffiliateInput) (*domain.Affiliate, error) {
	return b.affiliates.Update(ctx, id, input)
}

func (b *LocalBackend) DeleteAffiliate(ctx context.Context, id string) error {
	return b.affiliates.Delete(ctx, id)
}
