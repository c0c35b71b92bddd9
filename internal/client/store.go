package client

import (
	"context"
	"slices"
	"strings"
	"sync"

	"marketplace/internal/domain"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Login failure reasons shown to the operator.
const (
	MessageUnknownUser   = "Usuario no reconocido."
	MessageWrongPassword = "Contraseña incorrecta."
)

// Credentials is the single owner credential pair checked by Login.
type Credentials struct {
	Username string
	Password string
}

// LoginResult reports the outcome of Login. Message is set on failure.
type LoginResult struct {
	Success bool
	Message string
}

// Store mirrors both collections for a client session and tracks whether
// the owner is logged in. Mutations go to the backend first; the local copy
// changes only after the backend accepted them.
type Store struct {
	mu            sync.RWMutex
	loadMu        sync.Mutex
	backend       Backend
	session       *SessionCache
	credentials   Credentials
	logger        *zap.Logger
	initialized   bool
	loadErr       error
	products      []domain.Product
	affiliates    []domain.Affiliate
	ownerLoggedIn bool
}

// NewStore creates a Store and restores the login flag from session.
// session may be nil, in which case the flag is not persisted.
func NewStore(backend Backend, session *SessionCache, credentials Credentials, logger *zap.Logger) *Store {
	s := &Store{
		backend:     backend,
		session:     session,
		credentials: credentials,
		logger:      logger,
	}
	if session != nil {
		loggedIn, err := session.Load()
		if err != nil {
			logger.Warn("Ignoring unreadable session cache", zap.Error(err))
		}
		s.ownerLoggedIn = loggedIn
	}
	return s
}

// LoadInitialData fetches both collections once. Later calls are no-ops
// after a success. A failure is kept in Err and leaves the store
// uninitialized so the call can be retried.
func (s *Store) LoadInitialData(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.Initialized() {
		return nil
	}

	products, err := s.backend.ListProducts(ctx)
	if err == nil {
		var affiliates []domain.Affiliate
		affiliates, err = s.backend.ListAffiliates(ctx)
		if err == nil {
			s.mu.Lock()
			s.products = sorted(products)
			s.affiliates = sorted(affiliates)
			s.initialized = true
			s.loadErr = nil
			s.mu.Unlock()

			s.logger.Debug("Catalog data loaded",
				zap.Int("products", len(products)),
				zap.Int("affiliates", len(affiliates)),
			)
			return nil
		}
	}

	err = errors.Wrap(err, "load initial data")
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
	s.logger.Warn("Failed to load catalog data", zap.Error(err))
	return err
}

// Initialized reports whether LoadInitialData has succeeded.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Err returns the last LoadInitialData failure, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Products returns a copy of the cached products in canonical order.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

// Affiliates returns a copy of the cached affiliates in canonical order.
func (s *Store) Affiliates() []domain.Affiliate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.affiliates)
}

// OwnerLoggedIn reports the persisted owner session flag.
func (s *Store) OwnerLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownerLoggedIn
}

// Login checks the pair against the configured owner without any network
// call. The username is trimmed; the password is compared as given.
func (s *Store) Login(username, password string) LoginResult {
	if strings.TrimSpace(username) != s.credentials.Username {
		return LoginResult{Message: MessageUnknownUser}
	}
	if s.credentials.Password == "" || password != s.credentials.Password {
		return LoginResult{Message: MessageWrongPassword}
	}

	s.setOwnerLoggedIn(true)
	return LoginResult{Success: true}
}

// Logout clears the owner session flag.
func (s *Store) Logout() {
	s.setOwnerLoggedIn(false)
}

func (s *Store) setOwnerLoggedIn(v bool) {
	s.mu.Lock()
	s.ownerLoggedIn = v
	s.mu.Unlock()

	if s.session == nil {
		return
	}
	if err := s.session.Save(v); err != nil {
		s.logger.Warn("Failed to persist session", zap.Error(err))
	}
}

// AddProduct creates the product on the backend and inserts the result
// into the cache. The cache is untouched when the backend fails.
func (s *Store) AddProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	product, err := s.backend.CreateProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.products = upsert(s.products, *product)
	s.mu.Unlock()
	return product, nil
}

// UpdateProduct replaces the cached product with the backend's result.
func (s *Store) UpdateProduct(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error) {
	product, err := s.backend.UpdateProduct(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.products = upsert(s.products, *product)
	s.mu.Unlock()
	return product, nil
}

// DeleteProduct drops the product from the cache once the backend confirms.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if err := s.backend.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.products = remove(s.products, id)
	s.mu.Unlock()
	return nil
}

// AddAffiliate creates the affiliate on the backend and inserts the result
// into the cache. The cache is untouched when the backend fails.
func (s *Store) AddAffiliate(ctx context.Context, input domain.AffiliateInput) (*domain.Affiliate, error) {
	affiliate, err := s.backend.CreateAffiliate(ctx, input)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.affiliates = upsert(s.affiliates, *affiliate)
	s.mu.Unlock()
	return affiliate, nil
}

// UpdateAffiliate replaces the cached affiliate with the backend's result.
func (s *Store) UpdateAffiliate(ctx context.Context, id string, input domain.AffiliateInput) (*domain.Affiliate, error) {
	affiliate, err := s.backend.UpdateAffiliate(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.affiliates = upsert(s.affiliates, *affiliate)
	s.mu.Unlock()
	return affiliate, nil
}

// DeleteAffiliate drops the affiliate from the cache once the backend confirms.
func (s *Store) DeleteAffiliate(ctx context.Context, id string) error {
	if err := s.backend.DeleteAffiliate(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.affiliates = remove(s.affiliates, id)
	s.mu.Unlock()
	return nil
}

func sorted[T domain.Record](items []T) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	domain.SortNewestFirst(out)
	return out
}

// upsert replaces the record with the same id, or prepends it, and re-sorts.
func upsert[T domain.Record](items []T, item T) []T {
	out := slices.Clone(items)
	i := slices.IndexFunc(out, func(x T) bool { return x.Key() == item.Key() })
	if i >= 0 {
		out[i] = item
	} else {
		out = append([]T{item}, out...)
	}
	domain.SortNewestFirst(out)
	return out
}

func remove[T domain.Record](items []T, id string) []T {
	return slices.DeleteFunc(slices.Clone(items), func(x T) bool { return x.Key() == id })
}
