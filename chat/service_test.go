package chat

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/Samhitha-07/F1GPT/embeddings"
	"github.com/Samhitha-07/F1GPT/llm"
	"github.com/Samhitha-07/F1GPT/vectorstore"
)

type stubEmbedder struct {
	vector   []float32
	err      error
	lastText string
	called   bool
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.called = true
	s.lastText = text
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

var _ embeddings.Embedder = (*stubEmbedder)(nil)

type stubStore struct {
	records []vectorstore.Record
	err     error
}

func (s *stubStore) Search(ctx context.Context, collection string, vector []float32, topK int) ([]vectorstore.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

var _ SearchStore = (*stubStore)(nil)

type stubLLM struct {
	deltas   []string
	err      error
	messages []llm.Message
	called   bool
}

func (s *stubLLM) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	return strings.Join(s.deltas, ""), s.err
}

func (s *stubLLM) GenerateStream(ctx context.Context, messages []llm.Message, fn func(string) error) error {
	s.called = true
	s.messages = messages
	if s.err != nil {
		return s.err
	}
	for _, delta := range s.deltas {
		if err := fn(delta); err != nil {
			return err
		}
	}
	return nil
}

var _ llm.StreamClient = (*stubLLM)(nil)

func newTestService(store SearchStore, embedder embeddings.Embedder, client llm.StreamClient) *Service {
	return NewService(store, embedder, client, log.New(io.Discard, "", 0), Options{Collection: "f1gpt_chunks", TopK: 10})
}

func collect(t *testing.T) (func(string) error, *strings.Builder) {
	t.Helper()
	var sb strings.Builder
	return func(delta string) error {
		sb.WriteString(delta)
		return nil
	}, &sb
}

func extractContextBlock(t *testing.T, system string) string {
	t.Helper()
	const start = "------ START CONTEXT ------\n"
	const end = "\n------ END CONTEXT ------"

	from := strings.Index(system, start)
	to := strings.Index(system, end)
	if from < 0 || to < 0 {
		t.Fatalf("system message missing context markers: %q", system)
	}
	return system[from+len(start) : to]
}

func TestAnswerStreamsWithRetrievedContext(t *testing.T) {
	store := &stubStore{records: []vectorstore.Record{
		{Text: "Max Verstappen won the 2023 championship.", Distance: -0.95},
		{Text: "The 2023 season had 22 races.", Distance: -0.40},
	}}
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2}}
	client := &stubLLM{deltas: []string{"Max ", "Verstappen."}}
	svc := newTestService(store, embedder, client)

	conversation := []llm.Message{{Role: llm.RoleUser, Content: "Who won the 2023 championship?"}}
	streamFn, out := collect(t)

	if err := svc.Answer(context.Background(), conversation, streamFn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.String() != "Max Verstappen." {
		t.Fatalf("unexpected streamed answer: %q", out.String())
	}
	if embedder.lastText != "Who won the 2023 championship?" {
		t.Fatalf("embedded unexpected text: %q", embedder.lastText)
	}

	if len(client.messages) != 2 {
		t.Fatalf("expected system message plus conversation, got %d messages", len(client.messages))
	}
	system := client.messages[0]
	if system.Role != llm.RoleSystem {
		t.Fatalf("first message role is %q, want system", system.Role)
	}

	block := extractContextBlock(t, system.Content)
	want := "Max Verstappen won the 2023 championship.\n\nThe 2023 season had 22 races."
	if block != want {
		t.Fatalf("unexpected context block:\n%q\nwant:\n%q", block, want)
	}

	if !strings.Contains(system.Content, "QUESTION: Who won the 2023 championship?") {
		t.Fatal("system message does not carry the verbatim question")
	}
}

func TestAnswerSearchFailureDegradesToEmptyContext(t *testing.T) {
	store := &stubStore{err: vectorstore.ErrStore}
	client := &stubLLM{deltas: []string{"answer"}}
	svc := newTestService(store, &stubEmbedder{vector: []float32{1}}, client)

	streamFn, out := collect(t)
	conversation := []llm.Message{{Role: llm.RoleUser, Content: "Who leads the standings?"}}

	if err := svc.Answer(context.Background(), conversation, streamFn); err != nil {
		t.Fatalf("expected graceful degradation, got error: %v", err)
	}
	if out.String() != "answer" {
		t.Fatalf("expected a streamed answer, got %q", out.String())
	}

	if block := extractContextBlock(t, client.messages[0].Content); block != "" {
		t.Fatalf("expected empty context block, got %q", block)
	}
}

func TestAnswerEmbeddingFailureIsTerminal(t *testing.T) {
	embedErr := errors.New("embedding failure: attempts exhausted")
	client := &stubLLM{deltas: []string{"never"}}
	svc := newTestService(&stubStore{}, &stubEmbedder{err: embedErr}, client)

	streamFn, out := collect(t)
	err := svc.Answer(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}}, streamFn)
	if err == nil {
		t.Fatal("expected error when embedding fails")
	}
	if !errors.Is(err, embedErr) {
		t.Fatalf("expected embed error in chain, got %v", err)
	}
	if client.called {
		t.Fatal("llm must not be invoked after a terminal embedding failure")
	}
	if out.Len() != 0 {
		t.Fatalf("no deltas should have been streamed, got %q", out.String())
	}
}

func TestAnswerEmptyConversationStillEmbeds(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0}}
	client := &stubLLM{deltas: []string{"general answer"}}
	svc := newTestService(&stubStore{}, embedder, client)

	streamFn, out := collect(t)
	if err := svc.Answer(context.Background(), nil, streamFn); err != nil {
		t.Fatalf("unexpected error for empty conversation: %v", err)
	}

	if !embedder.called {
		t.Fatal("expected an embedding call for the empty question")
	}
	if embedder.lastText != "" {
		t.Fatalf("expected empty question text, got %q", embedder.lastText)
	}
	if out.String() != "general answer" {
		t.Fatalf("unexpected answer: %q", out.String())
	}
}

func TestAnswerDoesNotMutateConversation(t *testing.T) {
	conversation := []llm.Message{
		{Role: llm.RoleUser, Content: "first"},
		{Role: llm.RoleAssistant, Content: "reply"},
		{Role: llm.RoleUser, Content: "second"},
	}
	original := append([]llm.Message(nil), conversation...)

	client := &stubLLM{deltas: []string{"ok"}}
	svc := newTestService(&stubStore{}, &stubEmbedder{vector: []float32{1}}, client)

	streamFn, _ := collect(t)
	if err := svc.Answer(context.Background(), conversation, streamFn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range original {
		if conversation[i] != original[i] {
			t.Fatalf("conversation mutated at index %d", i)
		}
	}
	if len(client.messages) != len(conversation)+1 {
		t.Fatalf("expected %d messages sent to llm, got %d", len(conversation)+1, len(client.messages))
	}
}

func TestLatestUserMessageSkipsTrailingAssistant(t *testing.T) {
	conversation := []llm.Message{
		{Role: llm.RoleUser, Content: "the real question"},
		{Role: llm.RoleAssistant, Content: "a reply"},
	}

	if got := latestUserMessage(conversation); got != "the real question" {
		t.Fatalf("unexpected question: %q", got)
	}
	if got := latestUserMessage(nil); got != "" {
		t.Fatalf("expected empty question for empty conversation, got %q", got)
	}
}

func TestAnswerStopsStreamWhenCallbackFails(t *testing.T) {
	client := &stubLLM{deltas: []string{"a", "b", "c"}}
	svc := newTestService(&stubStore{}, &stubEmbedder{vector: []float32{1}}, client)

	var seen []string
	disconnect := errors.New("client went away")
	err := svc.Answer(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}}, func(delta string) error {
		seen = append(seen, delta)
		if len(seen) == 2 {
			return disconnect
		}
		return nil
	})

	if err == nil || !errors.Is(err, disconnect) {
		t.Fatalf("expected callback error to propagate, got %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected stream to stop after 2 deltas, got %d", len(seen))
	}
}
