// Package chat runs the per-request query pipeline: embed the trailing user
// question, retrieve similar chunks, and stream a context-grounded completion.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Samhitha-07/F1GPT/embeddings"
	"github.com/Samhitha-07/F1GPT/llm"
	"github.com/Samhitha-07/F1GPT/vectorstore"
)

const defaultTopK = 10

// SearchStore is the slice of the vector store gateway the query pipeline
// needs.
type SearchStore interface {
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]vectorstore.Record, error)
}

var _ SearchStore = (*vectorstore.Store)(nil)

type Service struct {
	store    SearchStore
	embedder embeddings.Embedder
	llm      llm.StreamClient
	logger   *log.Logger

	collection string
	topK       int
}

type Options struct {
	Collection string
	TopK       int
}

func NewService(store SearchStore, embedder embeddings.Embedder, llmClient llm.StreamClient, logger *log.Logger, opts Options) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}

	return &Service{
		store:      store,
		embedder:   embedder,
		llm:        llmClient,
		logger:     logger,
		collection: opts.Collection,
		topK:       opts.TopK,
	}
}

// Answer runs the pipeline for one conversation and streams the completion
// through streamFn as deltas arrive. The conversation itself is never
// mutated; one synthesized system message is prepended for this request only.
//
// An embedding failure is terminal for the request. A retrieval failure is
// not: the pipeline logs it and answers with an empty context block.
func (s *Service) Answer(ctx context.Context, conversation []llm.Message, streamFn func(string) error) error {
	question := latestUserMessage(conversation)

	// An empty question is allowed through: the UI owns input validation,
	// and an ungrounded answer beats a hard failure at this layer.
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return fmt.Errorf("embed question: %w", err)
	}

	docContext := ""
	records, err := s.store.Search(ctx, s.collection, vector, s.topK)
	if err != nil {
		s.logger.Printf("retrieval failed, answering without context: %v", err)
	} else {
		docContext = contextBlock(records)
	}

	messages := make([]llm.Message, 0, len(conversation)+1)
	messages = append(messages, systemMessage(docContext, question))
	messages = append(messages, conversation...)

	if err := s.llm.GenerateStream(ctx, messages, streamFn); err != nil {
		return fmt.Errorf("stream completion: %w", err)
	}
	return nil
}

// latestUserMessage returns the content of the most recent user-role message,
// or the empty string when the conversation has none.
func latestUserMessage(conversation []llm.Message) string {
	for i := len(conversation) - 1; i >= 0; i-- {
		if conversation[i].Role == llm.RoleUser {
			return conversation[i].Content
		}
	}
	return ""
}

// contextBlock joins retrieved texts best match first, separated by blank
// lines. Ranking comes from the store; no local re-ordering happens here.
func contextBlock(records []vectorstore.Record) string {
	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}
	return strings.Join(texts, "\n\n")
}

func systemMessage(docContext, question string) llm.Message {
	content := fmt.Sprintf(`You are an AI assistant who knows everything about Formula One.
Use the below context to augment what you know about Formula One racing.
The context provides recent page data from Wikipedia, the official F1 site and other sources.
If the context doesn't include the information you need, answer from your own knowledge
and don't mention what the context does or doesn't include.
Format responses using markdown where applicable and don't return images.
------ START CONTEXT ------
%s
------ END CONTEXT ------
QUESTION: %s`, docContext, question)

	return llm.Message{Role: llm.RoleSystem, Content: content}
}
