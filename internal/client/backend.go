package client

import (
	"context"

	"marketplace/internal/domain"
)

// Backend is the data source behind a Store. RemoteBackend talks to the
// catalog API; LocalBackend serves seeded data from memory.
type Backend interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListAffiliates(ctx context.Context) ([]domain.Affiliate, error)
	CreateAffiliate(ctx context.Context, input domain.AffiliateInput) (*domain.Affiliate, error)
	UpdateAffiliate(ctx context.Context, id string, input domain.AffiliateInput) (*domain.Affiliate, error)
	DeleteAffiliate(ctx context.Context, id string) error
}
