package domain

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ProductIDPrefix is prepended to the random token of every product id.
const ProductIDPrefix = "prd"

// Product represents a product in the catalog
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p Product) Key() string         { return p.ID }
func (p Product) Created() time.Time { return p.CreatedAt }

// ProductInput is the payload accepted for product creation and partial updates.
// A nil field means the field was absent from the payload.
type ProductInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	Price       *Number `json:"price,omitempty"`
}

// ProductChanges holds validated, normalized product fields.
type ProductChanges struct {
	Name        *string
	Description *string
	Image       *string
	Price       *float64
}

// ApplyTo merges the present fields over p. ID and CreatedAt are never touched.
func (c ProductChanges) ApplyTo(p *Product) {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.Image != nil {
		p.Image = *c.Image
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
}

var decimalPattern = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Number is a price as it arrived on the wire: either a JSON number or a
// numeric string. Parsing is deferred to validation.
type Number string

// NumberOf builds a Number from a float.
func NumberOf(v float64) *Number {
	n := Number(strconv.FormatFloat(v, 'f', -1, 64))
	return &n
}

func (n *Number) UnmarshalJSON(b []byte) error {
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
		return nil
	}
	*n = Number(b)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if v, err := n.Float64(); err == nil {
		return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
	}
	return json.Marshal(string(n))
}

// Float64 parses a plain decimal, rejecting hex floats, NaN and infinities.
// Negative zero is returned as zero.
func (n Number) Float64() (float64, error) {
	raw := strings.TrimSpace(string(n))
	if !decimalPattern.MatchString(raw) {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	if v == 0 {
		v = 0
	}
	return v, nil
}
