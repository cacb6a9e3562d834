// Package ingestion populates the vector collection: scrape each source,
// chunk the text, embed every chunk, and insert the (vector, text) records.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/Samhitha-07/F1GPT/chunker"
	"github.com/Samhitha-07/F1GPT/embeddings"
	"github.com/Samhitha-07/F1GPT/scraper"
	"github.com/Samhitha-07/F1GPT/vectorstore"
)

// Scraper fetches one URL and returns its plain text.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

var _ Scraper = (*scraper.Scraper)(nil)

// InsertStore is the slice of the vector store gateway the batch needs.
type InsertStore interface {
	CreateCollection(ctx context.Context, name string, dimension int, metric string) error
	Insert(ctx context.Context, collection string, record vectorstore.Record) (uuid.UUID, error)
}

var _ InsertStore = (*vectorstore.Store)(nil)

type Service struct {
	store    InsertStore
	scraper  Scraper
	embedder embeddings.Embedder
	chunker  chunker.Chunker
	logger   *log.Logger

	collection string
	dimension  int
	metric     string
}

type Options struct {
	Collection string
	Dimension  int
	Metric     string
}

func NewService(store InsertStore, scr Scraper, embedder embeddings.Embedder, logger *log.Logger, opts Options) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Metric == "" {
		opts.Metric = vectorstore.MetricDotProduct
	}

	return &Service{
		store:      store,
		scraper:    scr,
		embedder:   embedder,
		chunker:    chunker.Default(),
		logger:     logger,
		collection: opts.Collection,
		dimension:  opts.Dimension,
		metric:     opts.Metric,
	}
}

// Run ingests the given source URLs sequentially and runs to completion.
// A failing scrape skips that URL; a failing embed or insert skips that
// chunk. Only an unusable collection configuration aborts the whole run.
// Re-running does not deduplicate: every run inserts fresh records.
func (s *Service) Run(ctx context.Context, urls []string) error {
	if s.embedder == nil {
		return fmt.Errorf("embedder not configured")
	}

	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	for _, url := range urls {
		text, err := s.scraper.Scrape(ctx, url)
		if err != nil {
			s.logger.Printf("scrape failed for %s, skipping: %v", url, err)
			continue
		}
		s.ingestText(ctx, text, url)
	}

	return nil
}

func (s *Service) ensureCollection(ctx context.Context) error {
	err := s.store.CreateCollection(ctx, s.collection, s.dimension, s.metric)
	switch {
	case err == nil:
		s.logger.Printf("created collection %s (dimension %d, metric %s)", s.collection, s.dimension, s.metric)
	case errors.Is(err, vectorstore.ErrCollectionExists):
		s.logger.Printf("collection %s already exists, reusing", s.collection)
	default:
		return fmt.Errorf("ensure collection: %w", err)
	}
	return nil
}

// ingestText chunks the document and embeds/inserts each chunk, containing
// failures to the chunk that raised them.
func (s *Service) ingestText(ctx context.Context, text, source string) {
	inserted, skipped := 0, 0

	for chunk := range s.chunker.Chunks(text) {
		vector, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			s.logger.Printf("embed failed for a chunk of %s, skipping: %v", source, err)
			skipped++
			continue
		}

		if _, err := s.store.Insert(ctx, s.collection, vectorstore.Record{
			Vector:    vector,
			Text:      chunk,
			SourceURL: source,
		}); err != nil {
			s.logger.Printf("insert failed for a chunk of %s, skipping: %v", source, err)
			skipped++
			continue
		}
		inserted++
	}

	s.logger.Printf("ingested %s (%d chunks, %d skipped)", source, inserted, skipped)
}
