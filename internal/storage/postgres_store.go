package storage

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace/internal/domain"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps the document as a single JSONB row. The schema is
// created by database.RunMigrations.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenPostgres opens a pgx-backed database handle and verifies connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return db, nil
}

// PostgresDSN builds a connection string from its parts.
func PostgresDSN(host, port, user, password, database, schema string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		user, password, host, port, database, schema)
}

// NewPostgresStore creates a store over a migrated database.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// Initialize inserts the seed document when the row is missing.
func (s *PostgresStore) Initialize(ctx context.Context, seed SeedFunc) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM catalog_documents WHERE id = 1)`).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "check catalog document")
	}
	if exists {
		return nil
	}

	raw, err := encode(seed())
	if err != nil {
		return errors.Wrap(err, "encode seed catalog")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO catalog_documents (id, body, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO NOTHING
	`, string(raw))
	if err != nil {
		return errors.Wrap(err, "insert seed catalog")
	}

	s.logger.Info("Created catalog document from seeds")
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (domain.Catalog, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM catalog_documents WHERE id = 1`).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Catalog{}, errors.New("catalog document not initialized")
		}
		return domain.Catalog{}, errors.Wrap(err, "select catalog document")
	}
	return decode("catalog_documents", raw)
}

// Save upserts the single catalog row.
func (s *PostgresStore) Save(ctx context.Context, doc domain.Catalog) error {
	raw, err := encode(doc)
	if err != nil {
		return errors.Wrap(err, "encode catalog")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO catalog_documents (id, body, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`, string(raw))
	if err != nil {
		return errors.Wrap(err, "upsert catalog document")
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
