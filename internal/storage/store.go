package storage

import (
	"bytes"
	"context"
	"encoding/json"

	"marketplace/internal/domain"

	"github.com/cockroachdb/errors"
)

var errNullDocument = errors.New("document is null")

// SeedFunc produces the document written by Initialize when no store exists.
type SeedFunc func() domain.Catalog

// Store persists the whole catalog document. Implementations assume a single
// writer process.
type Store interface {
	// Initialize creates the store from seed if it does not exist yet.
	Initialize(ctx context.Context, seed SeedFunc) error
	// Load returns the full document or a *domain.CorruptStoreError.
	Load(ctx context.Context) (domain.Catalog, error)
	// Save replaces the whole document.
	Save(ctx context.Context, doc domain.Catalog) error
	Close() error
}

// rawDocument distinguishes missing collections from empty ones while decoding.
type rawDocument struct {
	Products   *[]domain.Product   `json:"products"`
	Affiliates *[]domain.Affiliate `json:"affiliates"`
}

// decode parses a persisted document. Missing collections load as empty.
func decode(location string, raw []byte) (domain.Catalog, error) {
	if string(bytes.TrimSpace(raw)) == "null" {
		return domain.Catalog{}, &domain.CorruptStoreError{Location: location, Err: errNullDocument}
	}

	var doc rawDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Catalog{}, &domain.CorruptStoreError{Location: location, Err: err}
	}

	var out domain.Catalog
	if doc.Products != nil {
		out.Products = *doc.Products
	}
	if doc.Affiliates != nil {
		out.Affiliates = *doc.Affiliates
	}
	return out.Normalize(), nil
}

func encode(doc domain.Catalog) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
