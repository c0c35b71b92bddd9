package seed

import (
	"testing"
	"time"

	"marketplace/internal/pkg/clock"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var now = time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

func TestLoader_BundledSeeds(t *testing.T) {
	doc := NewLoader(zap.NewNop(), clock.NewMockClock(now)).Load()

	require.NotEmpty(t, doc.Products)
	require.NotEmpty(t, doc.Affiliates)

	for _, p := range doc.Products {
		assert.False(t, p.CreatedAt.IsZero(), "product %s has no createdAt", p.ID)
	}
	// The entry without createdAt is stamped with now, which is the newest.
	assert.Equal(t, "prd-7900-electric", doc.Products[0].ID)
	assert.Equal(t, now, doc.Products[0].CreatedAt)
	assert.Equal(t, "aff-metro-transit", doc.Affiliates[0].ID)
}

func TestLoader_DirectoryOverride(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/seeds/products.json", []byte(`[
		{"id":"prd-a","name":"A","description":"a","price":1,"image":"a.png","createdAt":"2024-01-01T00:00:00Z"},
		{"id":"prd-b","name":"B","description":"b","price":2,"image":"b.png","createdAt":"2024-02-01T00:00:00Z"}
	]`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/seeds/affiliates.json", []byte(`[]`), 0o644))

	doc := NewDirLoader(fs, "/seeds", zap.NewNop(), clock.NewMockClock(now)).Load()

	require.Len(t, doc.Products, 2)
	assert.Equal(t, "prd-b", doc.Products[0].ID)
	assert.NotNil(t, doc.Affiliates)
	assert.Empty(t, doc.Affiliates)
}

func TestLoader_MalformedSeedsFallBackToEmpty(t *testing.T) {
	tests := []struct {
		name       string
		products   string
		affiliates string
	}{
		{name: "invalid json", products: `[{`, affiliates: `[]`},
		{name: "wrong field type", products: `[{"price":"free"}]`, affiliates: `[]`},
		{name: "missing affiliates file", products: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/seeds/products.json", []byte(tt.products), 0o644))
			if tt.affiliates != "" {
				require.NoError(t, afero.WriteFile(fs, "/seeds/affiliates.json", []byte(tt.affiliates), 0o644))
			}

			core, logs := observer.New(zap.WarnLevel)
			doc := NewDirLoader(fs, "/seeds", zap.New(core), clock.NewMockClock(now)).Load()

			assert.NotNil(t, doc.Products)
			assert.Empty(t, doc.Products)
			assert.Empty(t, doc.Affiliates)
			assert.Equal(t, 1, logs.Len())
		})
	}
}

func TestLoader_NonArraySeedIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/seeds/products.json", []byte(`{"not":"a list"}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/seeds/affiliates.json", []byte(`[{"id":"aff-x","name":"X"}]`), 0o644))

	doc := NewDirLoader(fs, "/seeds", zap.NewNop(), clock.NewMockClock(now)).Load()

	assert.Empty(t, doc.Products)
	require.Len(t, doc.Affiliates, 1)
	assert.Equal(t, now, doc.Affiliates[0].CreatedAt)
}
