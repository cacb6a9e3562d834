package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// registryTable tracks every collection with its declared dimension and
// metric, so Search can pick the right distance operator without the caller
// restating the configuration.
const registryTable = "f1gpt_collections"

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateCollection creates the named collection with a fixed vector dimension
// and similarity metric. It returns ErrCollectionExists when the collection is
// already present and ErrInvalidConfig for a bad name, dimension, or metric.
func (s *Store) CreateCollection(ctx context.Context, name string, dimension int, metric string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidConfig, dimension)
	}
	if _, err := operatorFor(metric); err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("%w: enable pgvector: %v", ErrStore, err)
	}

	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		name TEXT PRIMARY KEY,
		dimension INT NOT NULL,
		metric TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, registryTable)); err != nil {
		return fmt.Errorf("%w: ensure registry: %v", ErrStore, err)
	}

	var exists bool
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE name = $1)", registryTable),
		name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: check collection: %v", ErrStore, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}

	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE %s (
		id UUID PRIMARY KEY,
		content TEXT NOT NULL,
		source_url TEXT,
		embedding VECTOR(%d) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, name, dimension)); err != nil {
		return fmt.Errorf("%w: create collection table: %v", ErrStore, err)
	}

	if _, err := s.pool.Exec(ctx,
		fmt.Sprintf("INSERT INTO %s (name, dimension, metric) VALUES ($1, $2, $3)", registryTable),
		name, dimension, metric); err != nil {
		return fmt.Errorf("%w: register collection: %v", ErrStore, err)
	}

	return nil
}

// Insert stores one record and returns its generated id. A vector whose
// length does not match the collection's dimension is rejected by pgvector
// and surfaces as ErrStore.
func (s *Store) Insert(ctx context.Context, collection string, record Record) (uuid.UUID, error) {
	if err := validateName(collection); err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		"INSERT INTO %s (id, content, source_url, embedding) VALUES ($1, $2, $3, $4)", collection),
		id, record.Text, record.SourceURL, pgvector.NewVector(record.Vector))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: insert record: %v", ErrStore, err)
	}

	return id, nil
}

// Search returns up to topK records ordered best match first under the
// collection's metric. Fewer matches than topK, or none at all, is not an
// error. Ranking is done entirely by the database.
func (s *Store) Search(ctx context.Context, collection string, vector []float32, topK int) ([]Record, error) {
	if err := validateName(collection); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 10
	}

	var metric string
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT metric FROM %s WHERE name = $1", registryTable),
		collection).Scan(&metric)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: unknown collection %s", ErrStore, collection)
		}
		return nil, fmt.Errorf("%w: look up collection: %v", ErrStore, err)
	}

	operator, err := operatorFor(metric)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, searchQuery(collection, operator), pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query similar records: %v", ErrStore, err)
	}
	defer rows.Close()

	results := make([]Record, 0, topK)
	for rows.Next() {
		var (
			record    Record
			source    *string
			embedding pgvector.Vector
		)
		if err := rows.Scan(&record.ID, &record.Text, &source, &embedding, &record.Distance); err != nil {
			return nil, fmt.Errorf("%w: scan record: %v", ErrStore, err)
		}
		if source != nil {
			record.SourceURL = *source
		}
		record.Vector = embedding.Slice()
		results = append(results, record)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: iterate records: %v", ErrStore, rows.Err())
	}

	return results, nil
}

// Drop removes the collection table and its registry entry. Dropping a
// collection that does not exist is a no-op.
func (s *Store) Drop(ctx context.Context, collection string) error {
	if err := validateName(collection); err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", collection)); err != nil {
		return fmt.Errorf("%w: drop collection table: %v", ErrStore, err)
	}
	if _, err := s.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE name = $1", registryTable), collection); err != nil {
		return fmt.Errorf("%w: deregister collection: %v", ErrStore, err)
	}
	return nil
}

// searchQuery builds the ranked retrieval statement. The stored embedding is
// selected alongside the distance so every result carries its vector back out
// with its text. Both identifiers were validated before this point.
func searchQuery(collection, operator string) string {
	return fmt.Sprintf(`
		SELECT id, content, source_url, embedding, embedding %s $1::vector AS distance
		FROM %s
		ORDER BY distance
		LIMIT $2
	`, operator, collection)
}

// operatorFor maps a similarity metric to the pgvector distance operator used
// in ORDER BY. All three operators sort smaller-is-closer, so the SQL never
// needs metric-specific direction handling.
func operatorFor(metric string) (string, error) {
	switch metric {
	case MetricCosine:
		return "<=>", nil
	case MetricDotProduct:
		return "<#>", nil
	case MetricEuclidean:
		return "<->", nil
	default:
		return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidConfig, metric)
	}
}

// validateName keeps collection names to plain SQL identifiers, since table
// names cannot be bound as query parameters.
func validateName(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: collection name %q is not a valid identifier", ErrInvalidConfig, name)
	}
	return nil
}
