package domain

import (
	"encoding/json"
	"slices"
	"time"
)

// Record is implemented by every catalog entity.
type Record interface {
	Key() string
	Created() time.Time
}

// Catalog is the whole persisted document.
type Catalog struct {
	Products   []Product   `json:"products"`
	Affiliates []Affiliate `json:"affiliates"`
}

// MarshalJSON keeps empty collections as [] instead of null.
func (c Catalog) MarshalJSON() ([]byte, error) {
	type document Catalog
	doc := document(c.Normalize())
	return json.Marshal(doc)
}

// Normalize returns a copy with non-nil collections in canonical order.
func (c Catalog) Normalize() Catalog {
	out := Catalog{
		Products:   slices.Clone(c.Products),
		Affiliates: slices.Clone(c.Affiliates),
	}
	if out.Products == nil {
		out.Products = []Product{}
	}
	if out.Affiliates == nil {
		out.Affiliates = []Affiliate{}
	}
	SortNewestFirst(out.Products)
	SortNewestFirst(out.Affiliates)
	return out
}

// SortNewestFirst orders records by descending creation time. Ties keep their
// relative order.
func SortNewestFirst[T Record](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		return b.Created().Compare(a.Created())
	})
}
