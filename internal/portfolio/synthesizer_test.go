package portfolio

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkoval/regassist/internal/engine"
	"github.com/pkoval/regassist/internal/retrieval"
)

type mockEngine struct {
	chatFn func(ctx context.Context, model string, msgs []engine.Message, schema *engine.Schema) (string, error)
}

func (m *mockEngine) Chat(ctx context.Context, model string, msgs []engine.Message, schema *engine.Schema) (string, error) {
	if m.chatFn != nil {
		return m.chatFn(ctx, model, msgs, schema)
	}
	return "ok", nil
}

func (m *mockEngine) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	return nil, fmt.Errorf("not implemented")
}
func (m *mockEngine) IsRunning(ctx context.Context) bool               { return true }
func (m *mockEngine) ListModels(ctx context.Context) ([]string, error) { return nil, nil }
func (m *mockEngine) HasModel(ctx context.Context, name string) bool   { return true }
func (m *mockEngine) PullModel(ctx context.Context, name string, fn func(engine.PullProgress)) error {
	return nil
}

type mockRetriever struct {
	docs      []retrieval.Document
	lastQuery string
	lastK     int
	err       error
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, topK int) ([]retrieval.Document, error) {
	m.lastQuery = query
	m.lastK = topK
	return m.docs, m.err
}

func doc(id, content string) retrieval.Document {
	return retrieval.Document{ID: id, Content: content}
}

func TestNewSynthesizer_FailsFastOnMissingDeps(t *testing.T) {
	if _, err := NewSynthesizer(nil, "m", &mockRetriever{}, 8); err == nil {
		t.Error("expected error for nil engine")
	}
	if _, err := NewSynthesizer(&mockEngine{}, "m", nil, 8); err == nil {
		t.Error("expected error for nil retriever")
	}
}

func TestCandidateNames(t *testing.T) {
	cases := []struct {
		question string
		want     []string
	}{
		{"Summarize Alice Johnson's portfolio", []string{"Summarize", "Alice", "Johnson's"}},
		{"what about bob lee?", nil},
		{"Is Al ok?", nil}, // tokens of length <= 2 are skipped
		{"", nil},
	}
	for _, tc := range cases {
		got := candidateNames(tc.question)
		if len(got) != len(tc.want) {
			t.Errorf("candidateNames(%q) = %v, want %v", tc.question, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("candidateNames(%q)[%d] = %q, want %q", tc.question, i, got[i], tc.want[i])
			}
		}
	}
}

func TestRerank_KeepsOnlyNamedStudent(t *testing.T) {
	s, err := NewSynthesizer(&mockEngine{}, "m", &mockRetriever{}, 8)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	docs := []retrieval.Document{
		doc("v1", "Student Name: Bob Lee. Achievement: Competition."),
		doc("v2", "Student Name: Alice Johnson. Achievement: Workshop."),
		doc("v3", "Student Name: Carol Wu. Achievement: Seminar."),
		doc("v4", "Student Name: Alice Johnson. Achievement: Seminar."),
	}

	kept := s.rerank("Tell me about Alice", docs)
	if len(kept) != 2 {
		t.Fatalf("kept %d docs, want 2", len(kept))
	}
	// Retrieval order preserved.
	if kept[0].ID != "v2" || kept[1].ID != "v4" {
		t.Errorf("kept = [%s %s], want [v2 v4]", kept[0].ID, kept[1].ID)
	}
}

func TestRerank_NoCandidateNamesIsTruncationOnly(t *testing.T) {
	s, err := NewSynthesizer(&mockEngine{}, "m", &mockRetriever{}, 2)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	docs := []retrieval.Document{
		doc("v1", "Student Name: Bob Lee."),
		doc("v2", "Student Name: Alice Johnson."),
		doc("v3", "Student Name: Carol Wu."),
	}

	kept := s.rerank("who has the most credits?", docs)
	if len(kept) != 2 {
		t.Fatalf("kept %d docs, want truncation to 2", len(kept))
	}
	if kept[0].ID != "v1" || kept[1].ID != "v2" {
		t.Errorf("order changed: [%s %s]", kept[0].ID, kept[1].ID)
	}
}

func TestRerank_BoundedByTopK(t *testing.T) {
	s, err := NewSynthesizer(&mockEngine{}, "m", &mockRetriever{}, 2)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	var docs []retrieval.Document
	for i := 0; i < 5; i++ {
		docs = append(docs, doc(fmt.Sprintf("v%d", i), "Student Name: Alice Johnson."))
	}

	kept := s.rerank("Summarize Alice", docs)
	if len(kept) > 2 {
		t.Errorf("kept %d docs, want <= topK (2)", len(kept))
	}
}

func TestSynthesize_PipelineWiring(t *testing.T) {
	retriever := &mockRetriever{docs: []retrieval.Document{
		doc("v1", "Student Name: Alice Johnson. Achievement: Workshop - Lab Safety."),
	}}

	var answerPrompt string
	eng := &mockEngine{chatFn: func(ctx context.Context, model string, msgs []engine.Message, schema *engine.Schema) (string, error) {
		// First call is the rewrite, second the synthesis.
		if strings.Contains(msgs[0].Content, "rewrite") || strings.Contains(msgs[0].Content, "search quer") {
			return "Alice Johnson achievements portfolio", nil
		}
		answerPrompt = msgs[0].Content
		return "Alice Johnson completed the Lab Safety workshop.", nil
	}}

	s, err := NewSynthesizer(eng, "llama3.1:8b", retriever, 8)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	res, err := s.Synthesize(context.Background(), "Summarize Alice Johnson's portfolio")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if retriever.lastQuery != "Alice Johnson achievements portfolio" {
		t.Errorf("retriever got query %q, want rewritten query", retriever.lastQuery)
	}
	if res.Answer != "Alice Johnson completed the Lab Safety workshop." {
		t.Errorf("Answer = %q", res.Answer)
	}
	if len(res.Context) != 1 {
		t.Errorf("Context size = %d, want 1", len(res.Context))
	}
	if !strings.Contains(answerPrompt, "Lab Safety") {
		t.Error("surviving document content missing from synthesis prompt")
	}
	if !strings.Contains(answerPrompt, "ONLY") {
		t.Error("grounding rule missing from synthesis prompt")
	}
}

func TestSynthesize_RewriteFailurePropagates(t *testing.T) {
	eng := &mockEngine{chatFn: func(ctx context.Context, model string, msgs []engine.Message, schema *engine.Schema) (string, error) {
		return "", fmt.Errorf("engine down")
	}}
	s, err := NewSynthesizer(eng, "m", &mockRetriever{}, 8)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	if _, err := s.Synthesize(context.Background(), "Summarize Alice"); err == nil {
		t.Error("expected pipeline failure when rewrite fails")
	}
}

func TestSynthesize_RetrieverFailurePropagates(t *testing.T) {
	retriever := &mockRetriever{err: fmt.Errorf("store down")}
	s, err := NewSynthesizer(&mockEngine{}, "m", retriever, 8)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	if _, err := s.Synthesize(context.Background(), "Summarize Alice"); err == nil {
		t.Error("expected pipeline failure when retrieval fails")
	}
}

func TestSynthesize_EmptyRewriteFallsBackToQuestion(t *testing.T) {
	retriever := &mockRetriever{}
	calls := 0
	eng := &mockEngine{chatFn: func(ctx context.Context, model string, msgs []engine.Message, schema *engine.Schema) (string, error) {
		calls++
		if calls == 1 {
			return "  ", nil // rewrite produced nothing useful
		}
		return "answer", nil
	}}

	s, err := NewSynthesizer(eng, "m", retriever, 8)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}
	if _, err := s.Synthesize(context.Background(), "Summarize Alice"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if retriever.lastQuery != "Summarize Alice" {
		t.Errorf("retriever got %q, want the original question", retriever.lastQuery)
	}
}
