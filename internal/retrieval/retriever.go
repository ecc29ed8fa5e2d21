package retrieval

import (
	"context"
	"time"
)

// Document is a retrieved achievement document with its similarity score.
type Document struct {
	ID            string
	AchievementID string
	StudentName   string
	Content       string
	Score         float32
	CreatedAt     time.Time
}

// Retriever combines embedding and vector search to find relevant
// achievement documents for a query.
type Retriever struct {
	embedder *Embedder
	store    VectorStore
}

// NewRetriever creates a Retriever backed by the given Embedder and VectorStore.
func NewRetriever(embedder *Embedder, store VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve embeds the query and returns the top-K most similar documents.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Document, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := r.store.Search(vec, topK)
	if err != nil {
		return nil, err
	}

	return scoredToDocuments(scored), nil
}

func scoredToDocuments(scored []ScoredRecord) []Document {
	docs := make([]Document, len(scored))
	for i, s := range scored {
		docs[i] = Document{
			ID:            s.ID,
			AchievementID: s.AchievementID,
			StudentName:   s.StudentName,
			Content:       s.TextChunk,
			Score:         s.Score,
			CreatedAt:     s.CreatedAt,
		}
	}
	return docs
}
