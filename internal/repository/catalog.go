package repository

import (
	"context"
	"slices"
	"sync"

	"marketplace/internal/domain"
	"marketplace/internal/pkg/clock"
	"marketplace/internal/storage"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Catalog owns the in-memory copy of the persisted document and is its only
// writer. Mutations are serialized and memory is replaced only after the store
// accepted the new document.
type Catalog struct {
	mu       sync.RWMutex
	doc      domain.Catalog
	store    storage.Store
	clock    clock.Clock
	newToken func() string
	logger   *zap.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock sets the time source used for createdAt.
func WithClock(c clock.Clock) Option {
	return func(cat *Catalog) { cat.clock = c }
}

// WithTokenGenerator sets the random part of generated ids.
func WithTokenGenerator(f func() string) Option {
	return func(cat *Catalog) { cat.newToken = f }
}

// NewCatalog loads the current document from store. A corrupt document is
// returned as *domain.CorruptStoreError for the caller to handle.
func NewCatalog(ctx context.Context, store storage.Store, logger *zap.Logger, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		store:    store,
		clock:    clock.NewRealClock(),
		newToken: uuid.NewString,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	doc, err := store.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	c.doc = doc.Normalize()

	logger.Info("Catalog loaded",
		zap.Int("products", len(c.doc.Products)),
		zap.Int("affiliates", len(c.doc.Affiliates)),
	)
	return c, nil
}

// Products returns the product repository backed by this catalog.
func (c *Catalog) Products() ProductRepository {
	return &productRepository{catalog: c}
}

// Affiliates returns the affiliate repository backed by this catalog.
func (c *Catalog) Affiliates() AffiliateRepository {
	return &affiliateRepository{catalog: c}
}

// Snapshot returns a copy of the whole document in canonical order.
func (c *Catalog) Snapshot() domain.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc.Normalize()
}

func (c *Catalog) newID(prefix string) string {
	return prefix + "-" + c.newToken()
}

// mutate applies fn to a copy of the document, saves the result and commits
// it. When fn or the save fails, the in-memory document is left unchanged.
// The save ignores cancellation of ctx so a committed write is never left
// out of memory.
func (c *Catalog) mutate(ctx context.Context, fn func(doc *domain.Catalog) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := domain.Catalog{
		Products:   slices.Clone(c.doc.Products),
		Affiliates: slices.Clone(c.doc.Affiliates),
	}
	if err := fn(&next); err != nil {
		return err
	}
	next = next.Normalize()

	if err := c.store.Save(context.WithoutCancel(ctx), next); err != nil {
		c.logger.Error("Failed to persist catalog", zap.Error(err))
		return errors.Wrap(err, "persist catalog")
	}
	c.doc = next
	return nil
}

func indexOf[T domain.Record](items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool { return item.Key() == id })
}
