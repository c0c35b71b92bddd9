package seed

import (
	"embed"
	"encoding/json"
	"io/fs"
	"path"

	"marketplace/internal/domain"
	"marketplace/internal/pkg/clock"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	productsFile   = "products.json"
	affiliatesFile = "affiliates.json"
)

//go:embed data/*.json
var bundled embed.FS

// Loader builds the initial catalog document from seed definitions.
type Loader struct {
	fs     afero.Fs
	dir    string
	clock  clock.Clock
	logger *zap.Logger
}

// NewLoader returns a Loader reading the bundled seed files.
func NewLoader(logger *zap.Logger, c clock.Clock) *Loader {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		panic(err)
	}
	return &Loader{
		fs:     afero.FromIOFS{FS: sub},
		dir:    ".",
		clock:  c,
		logger: logger,
	}
}

// NewDirLoader returns a Loader reading seed files from dir on fsys.
func NewDirLoader(fsys afero.Fs, dir string, logger *zap.Logger, c clock.Clock) *Loader {
	return &Loader{fs: fsys, dir: dir, clock: c, logger: logger}
}

// Load reads both seed collections. Entries without createdAt are stamped
// with the current time. Unreadable or malformed seeds produce an empty
// catalog and a warning, never an error.
func (l *Loader) Load() domain.Catalog {
	products, err := readSeed[domain.Product](l.fs, path.Join(l.dir, productsFile))
	if err != nil {
		l.warn(err)
		return domain.Catalog{}.Normalize()
	}
	affiliates, err := readSeed[domain.Affiliate](l.fs, path.Join(l.dir, affiliatesFile))
	if err != nil {
		l.warn(err)
		return domain.Catalog{}.Normalize()
	}

	now := l.clock.Now()
	for i := range products {
		if products[i].CreatedAt.IsZero() {
			products[i].CreatedAt = now
		}
	}
	for i := range affiliates {
		if affiliates[i].CreatedAt.IsZero() {
			affiliates[i].CreatedAt = now
		}
	}

	doc := domain.Catalog{Products: products, Affiliates: affiliates}.Normalize()
	l.logger.Debug("Seeds loaded",
		zap.Int("products", len(doc.Products)),
		zap.Int("affiliates", len(doc.Affiliates)),
	)
	return doc
}

func (l *Loader) warn(err error) {
	l.logger.Warn("Could not load seed data, starting with an empty catalog",
		zap.String("dir", l.dir),
		zap.Error(err),
	)
}

// readSeed decodes a JSON array of records. A file holding anything other
// than an array is treated as empty, matching how a missing list behaves.
func readSeed[T any](fsys afero.Fs, name string) ([]T, error) {
	raw, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "read seed %s", name)
	}

	var probe interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errors.Wrapf(err, "parse seed %s", name)
	}
	if _, ok := probe.([]interface{}); !ok {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrapf(err, "decode seed %s", name)
	}
	return items, nil
}
