// Package vectorstore implements the collection gateway over Postgres with
// the pgvector extension. A collection is one table with a fixed-dimension
// vector column; the dimension and similarity metric are recorded in a
// registry table at creation time and never change afterwards.
package vectorstore

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MetricCosine     = "cosine"
	MetricDotProduct = "dot_product"
	MetricEuclidean  = "euclidean"
)

var (
	// ErrStore marks connectivity, read, or write failures against the
	// underlying database.
	ErrStore = errors.New("vector store failure")

	// ErrCollectionExists is returned by CreateCollection when the named
	// collection has already been created.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrInvalidConfig is returned for a bad collection name, dimension,
	// or similarity metric.
	ErrInvalidConfig = errors.New("invalid collection configuration")
)

// Record is one stored (vector, text) pair. Vector must be the embedding of
// Text under the same model the collection is queried with; the store cannot
// detect a model mismatch.
type Record struct {
	ID        uuid.UUID
	Vector    []float32
	Text      string
	SourceURL string

	// Distance is populated on search results: the metric distance to the
	// query vector, smaller is closer. Zero on inserts.
	Distance float64
}
