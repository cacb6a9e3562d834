package vectorstore

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOperatorForKnownMetrics(t *testing.T) {
	cases := map[string]string{
		MetricCosine:     "<=>",
		MetricDotProduct: "<#>",
		MetricEuclidean:  "<->",
	}

	for metric, want := range cases {
		got, err := operatorFor(metric)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", metric, err)
		}
		if got != want {
			t.Fatalf("%s: expected operator %q, got %q", metric, want, got)
		}
	}
}

func TestOperatorForUnknownMetric(t *testing.T) {
	if _, err := operatorFor("manhattan"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"f1gpt_chunks", "_hidden", "Chunks2024"}
	for _, name := range valid {
		if err := validateName(name); err != nil {
			t.Fatalf("%q should be valid: %v", name, err)
		}
	}

	invalid := []string{"", "2024chunks", "chunks; DROP TABLE users", "chunks-prod", "a.b"}
	for _, name := range invalid {
		if err := validateName(name); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%q should be rejected, got %v", name, err)
		}
	}
}

// Configuration is validated before any SQL runs, so a store with no pool
// must still reject bad input instead of panicking.
func TestCreateCollectionValidatesBeforeSQL(t *testing.T) {
	store := New(nil)
	ctx := context.Background()

	if err := store.CreateCollection(ctx, "bad name!", 1536, MetricDotProduct); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for bad name, got %v", err)
	}
	if err := store.CreateCollection(ctx, "chunks", 0, MetricDotProduct); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for zero dimension, got %v", err)
	}
	if err := store.CreateCollection(ctx, "chunks", -5, MetricDotProduct); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for negative dimension, got %v", err)
	}
	if err := store.CreateCollection(ctx, "chunks", 1536, "chebyshev"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for unknown metric, got %v", err)
	}
}

func TestInsertRejectsInvalidCollectionName(t *testing.T) {
	store := New(nil)
	if _, err := store.Insert(context.Background(), "not a name", Record{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSearchRejectsInvalidCollectionName(t *testing.T) {
	store := New(nil)
	if _, err := store.Search(context.Background(), "1bad", []float32{1}, 10); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestDropRejectsInvalidCollectionName(t *testing.T) {
	store := New(nil)
	if err := store.Drop(context.Background(), "chunks; DROP TABLE users"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

// Search results carry the stored embedding back out, so the statement must
// select the embedding column itself in addition to using it for ranking.
func TestSearchQuerySelectsStoredEmbedding(t *testing.T) {
	query := searchQuery("f1gpt_chunks", "<#>")

	if !strings.Contains(query, "SELECT id, content, source_url, embedding,") {
		t.Fatalf("statement does not select the embedding column: %s", query)
	}
	if !strings.Contains(query, "embedding <#> $1::vector AS distance") {
		t.Fatalf("statement does not rank by the requested operator: %s", query)
	}
	if !strings.Contains(query, "FROM f1gpt_chunks") {
		t.Fatalf("statement does not target the collection table: %s", query)
	}
	if !strings.Contains(query, "ORDER BY distance") {
		t.Fatalf("statement does not order by distance: %s", query)
	}
}
