package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkoval/regassist/internal/engine"
)

// mockEngine implements engine.Engine for embedding tests.
type mockEngine struct {
	embedFn func(ctx context.Context, model, text string) ([]float32, error)
}

func (m *mockEngine) Chat(ctx context.Context, model string, msgs []engine.Message, schema *engine.Schema) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (m *mockEngine) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, model, text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEngine) IsRunning(ctx context.Context) bool               { return true }
func (m *mockEngine) ListModels(ctx context.Context) ([]string, error) { return nil, nil }
func (m *mockEngine) HasModel(ctx context.Context, name string) bool   { return true }
func (m *mockEngine) PullModel(ctx context.Context, name string, fn func(engine.PullProgress)) error {
	return nil
}

// mockStore implements VectorStore with canned search results.
type mockStore struct {
	results []ScoredRecord
	lastK   int
}

func (m *mockStore) Insert(records []Record) error { return nil }
func (m *mockStore) Search(vector []float32, topK int) ([]ScoredRecord, error) {
	m.lastK = topK
	return m.results, nil
}
func (m *mockStore) Count() (int, error) { return len(m.results), nil }
func (m *mockStore) Clear() error        { return nil }

func TestRetrieve_MapsRecordsToDocuments(t *testing.T) {
	store := &mockStore{results: []ScoredRecord{
		{Record: Record{ID: "v1", AchievementID: "A001", StudentName: "alice johnson", TextChunk: "Student Name: Alice Johnson."}, Score: 0.92},
		{Record: Record{ID: "v2", AchievementID: "A003", StudentName: "bob lee", TextChunk: "Student Name: Bob Lee."}, Score: 0.41},
	}}
	r := NewRetriever(NewEmbedder(&mockEngine{}, "nomic-embed-text"), store)

	docs, err := r.Retrieve(context.Background(), "alice portfolio", 8)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if store.lastK != 8 {
		t.Errorf("topK passed to store = %d, want 8", store.lastK)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
	if docs[0].StudentName != "alice johnson" || docs[0].Score != 0.92 {
		t.Errorf("docs[0] = %+v", docs[0])
	}
	if docs[1].Content != "Student Name: Bob Lee." {
		t.Errorf("docs[1].Content = %q", docs[1].Content)
	}
}

func TestRetrieve_EmbedFailure(t *testing.T) {
	eng := &mockEngine{embedFn: func(ctx context.Context, model, text string) ([]float32, error) {
		return nil, fmt.Errorf("engine down")
	}}
	r := NewRetriever(NewEmbedder(eng, "nomic-embed-text"), &mockStore{})

	if _, err := r.Retrieve(context.Background(), "q", 5); err == nil {
		t.Error("expected error when embedding fails")
	}
}

func TestEmbedBatch(t *testing.T) {
	eng := &mockEngine{embedFn: func(ctx context.Context, model, text string) ([]float32, error) {
		return []float32{float32(len(text))}, nil
	}}
	e := NewEmbedder(eng, "nomic-embed-text")

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vecs))
	}
	// Order must match input order despite concurrent execution.
	for i, want := range []float32{1, 2, 3} {
		if vecs[i][0] != want {
			t.Errorf("vecs[%d] = %v, want %v", i, vecs[i][0], want)
		}
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	e := NewEmbedder(&mockEngine{}, "nomic-embed-text")
	vecs, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if vecs != nil {
		t.Errorf("got %v, want nil", vecs)
	}
}

func TestEmbedBatch_PropagatesError(t *testing.T) {
	eng := &mockEngine{embedFn: func(ctx context.Context, model, text string) ([]float32, error) {
		if text == "bad" {
			return nil, fmt.Errorf("boom")
		}
		return []float32{1}, nil
	}}
	e := NewEmbedder(eng, "nomic-embed-text")

	if _, err := e.EmbedBatch(context.Background(), []string{"ok", "bad"}); err == nil {
		t.Error("expected error from failing embed")
	}
}
