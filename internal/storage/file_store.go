package storage

import (
	"context"
	"os"
	"path/filepath"

	"marketplace/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// FileMode is the permission set on the persisted document.
const FileMode os.FileMode = 0o644

// FileStore keeps the document as indented JSON in a single file.
type FileStore struct {
	fs     afero.Fs
	path   string
	logger *zap.Logger
}

// NewFileStore creates a FileStore rooted on fs. Pass afero.NewOsFs() for disk.
func NewFileStore(fs afero.Fs, path string, logger *zap.Logger) *FileStore {
	return &FileStore{fs: fs, path: path, logger: logger}
}

// Path returns the document location.
func (s *FileStore) Path() string {
	return s.path
}

// Initialize writes the seed document when the file does not exist yet.
// An existing file is left untouched, even when it is corrupt.
func (s *FileStore) Initialize(ctx context.Context, seed SeedFunc) error {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return errors.Wrapf(err, "stat store %s", s.path)
	}
	if exists {
		return nil
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrapf(err, "create store directory for %s", s.path)
	}

	doc := seed()
	s.logger.Info("Creating store from seeds",
		zap.String("path", s.path),
		zap.Int("products", len(doc.Products)),
		zap.Int("affiliates", len(doc.Affiliates)),
	)
	return s.Save(ctx, doc)
}

// Load reads and decodes the document. Unparseable content is reported as
// domain.ErrCorruptStore.
func (s *FileStore) Load(ctx context.Context) (domain.Catalog, error) {
	raw, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return domain.Catalog{}, errors.Wrapf(err, "read store %s", s.path)
	}
	return decode(s.path, raw)
}

// Save writes to a temporary file next to the target and renames it into
// place, so readers see either the old or the new document.
func (s *FileStore) Save(ctx context.Context, doc domain.Catalog) error {
	raw, err := encode(doc)
	if err != nil {
		return errors.Wrap(err, "encode catalog")
	}

	dir := filepath.Dir(s.path)
	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return errors.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		tmp.Close()
		s.fs.Remove(tmpName)
		return errors.Wrapf(err, "sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return errors.Wrapf(err, "close %s", tmpName)
	}
	if err := s.fs.Chmod(tmpName, FileMode); err != nil {
		s.fs.Remove(tmpName)
		return errors.Wrapf(err, "chmod %s", tmpName)
	}

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return errors.Wrapf(err, "replace %s", s.path)
	}
	return nil
}

// Close is a no-op; every Save leaves the file complete.
func (s *FileStore) Close() error {
	return nil
}
