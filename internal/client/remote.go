package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketplace/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	productsPath   = "/products"
	affiliatesPath = "/affiliates"
	sessionPath    = "/session"
)

// RemoteBackend calls the catalog REST API.
type RemoteBackend struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retries    uint64
	backoff    time.Duration
	logger     *zap.Logger
}

// RemoteOption configures a RemoteBackend.
type RemoteOption func(*RemoteBackend)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(b *RemoteBackend) { b.httpClient = c }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) RemoteOption {
	return func(b *RemoteBackend) { b.token = token }
}

// WithRetries bounds how often a read is retried after a transport failure.
func WithRetries(n int, backoff time.Duration) RemoteOption {
	return func(b *RemoteBackend) {
		if n < 0 {
			n = 0
		}
		b.retries = uint64(n)
		b.backoff = backoff
	}
}

// NewRemoteBackend creates a backend for the API rooted at baseURL,
// e.g. http://localhost:3001/api.
func NewRemoteBackend(baseURL string, logger *zap.Logger, opts ...RemoteOption) *RemoteBackend {
	b := &RemoteBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retries:    3,
		backoff:    200 * time.Millisecond,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RemoteBackend) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := b.get(ctx, productsPath, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (b *RemoteBackend) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	var product domain.Product
	if err := b.do(ctx, http.MethodPost, productsPath, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (b *RemoteBackend) UpdateProduct(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error) {
	var product domain.Product
	if err := b.do(ctx, http.MethodPatch, productsPath+"/"+url.PathEscape(id), input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (b *RemoteBackend) DeleteProduct(ctx context.Context, id string) error {
	return b.do(ctx, http.MethodDelete, productsPath+"/"+url.PathEscape(id), nil, nil)
}

func (b *RemoteBackend) ListAffiliates(ctx context.Context) ([]domain.Affiliate, error) {
	var affiliates []domain.Affiliate
	if err := b.get(ctx, affiliatesPath, &affiliates); err != nil {
		return nil, err
	}
	return affiliates, nil
}

func (b *RemoteBackend) CreateAffiliate(ctx context.Context, input domain.AffiliateInput) (*domain.Affiliate, error) {
	var affiliate domain.Affiliate
	if err := b.do(ctx, http.MethodPost, affiliatesPath, input, &affiliate); err != nil {
		return nil, err
	}
	return &affiliate, nil
}

func (b *RemoteBackend) UpdateAffiliate(ctx context.Context, id string, input domain.AffiliateInput) (*domain.Affiliate, error) {
	var affiliate domain.Affiliate
	if err := b.do(ctx, http.MethodPatch, affiliatesPath+"/"+url.PathEscape(id), input, &affiliate); err != nil {
		return nil, err
	}
	return &affiliate, nil
}

func (b *RemoteBackend) DeleteAffiliate(ctx context.Context, id string) error {
	return b.do(ctx, http.MethodDelete, affiliatesPath+"/"+url.PathEscape(id), nil, nil)
}

// CreateSession exchanges owner credentials for a server access token.
// Only available when the server has owner sessions enabled.
func (b *RemoteBackend) CreateSession(ctx context.Context, username, password string) (string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	in := map[string]string{"username": username, "password": password}
	if err := b.do(ctx, http.MethodPost, sessionPath, in, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// get retries transport failures and 5xx answers with exponential backoff.
func (b *RemoteBackend) get(ctx context.Context, path string, out interface{}) error {
	base := b.backoff
	if base <= 0 {
		base = time.Millisecond
	}
	backoff := retry.WithMaxRetries(b.retries, retry.NewExponential(base))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := b.do(ctx, http.MethodGet, path, nil, out)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.Is(err, domain.ErrTransport) || (errors.As(err, &apiErr) && apiErr.Status >= http.StatusInternalServerError) {
			b.logger.Debug("Retrying catalog read",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (b *RemoteBackend) do(ctx context.Context, method, path string, in, out interface{}) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encode %s", op)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.TransportError{Op: op, Err: errors.Wrap(err, "decode response")}
	}
	return nil
}
