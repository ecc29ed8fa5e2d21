package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkoval/regassist/internal/records"
	"github.com/pkoval/regassist/internal/retrieval"
)

const (
	defaultChunkSize    = 500
	defaultChunkOverlap = 50
)

// ContentEmbedder generates embeddings for text chunks.
type ContentEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorSink is the subset of the vector store the indexer writes to.
type VectorSink interface {
	Insert(recs []retrieval.Record) error
	Clear() error
	Count() (int, error)
}

// Indexer builds the vector index from the achievement table: one document
// per achievement row, chunked and embedded. Reindexing is a full rebuild;
// there is no incremental path because the source file is the single
// source of truth.
type Indexer struct {
	table        *records.Table
	embedder     ContentEmbedder
	vectors      VectorSink
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// New creates an Indexer. Non-positive chunk parameters select the
// defaults (500 runes, 50 overlap).
func New(table *records.Table, embedder ContentEmbedder, vectors VectorSink, chunkSize, chunkOverlap int) *Indexer {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = defaultChunkOverlap
	}
	return &Indexer{
		table:        table,
		embedder:     embedder,
		vectors:      vectors,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       slog.Default(),
	}
}

// Reindex rebuilds the index from scratch: clears the store, renders every
// row into its retrieval document, chunks, embeds, and inserts. Returns
// the number of vectors written.
func (ix *Indexer) Reindex(ctx context.Context) (int, error) {
	if err := ix.vectors.Clear(); err != nil {
		return 0, fmt.Errorf("clearing vector store: %w", err)
	}

	var texts []string
	var recs []retrieval.Record
	now := time.Now().UTC()
	for _, row := range ix.table.Rows() {
		for _, chunk := range chunkText(row.Document(), ix.chunkSize, ix.chunkOverlap) {
			texts = append(texts, chunk)
			recs = append(recs, retrieval.Record{
				ID:            uuid.New().String(),
				AchievementID: row.AchievementID,
				StudentName:   records.Title(row.Name),
				TextChunk:     chunk,
				CreatedAt:     now,
			})
		}
	}

	if len(recs) == 0 {
		ix.logger.Warn("reindex found no rows to index")
		return 0, nil
	}

	vecs, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding %d chunks: %w", len(texts), err)
	}
	for i := range recs {
		recs[i].Embedding = vecs[i]
	}

	if err := ix.vectors.Insert(recs); err != nil {
		return 0, fmt.Errorf("inserting vectors: %w", err)
	}

	ix.logger.Info("reindex complete", "rows", ix.table.Len(), "vectors", len(recs))
	return len(recs), nil
}

// EnsureIndexed reindexes only when the store is empty, so restarts do not
// redo embedding work. Returns the number of vectors written, 0 when the
// existing index was kept.
func (ix *Indexer) EnsureIndexed(ctx context.Context) (int, error) {
	n, err := ix.vectors.Count()
	if err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	if n > 0 {
		ix.logger.Info("vector index already populated", "vectors", n)
		return 0, nil
	}
	return ix.Reindex(ctx)
}

// chunkText splits s into rune-based windows of at most size runes,
// overlapping by overlap runes. Short inputs come back as a single chunk.
func chunkText(s string, size, overlap int) []string {
	runes := []rune(s)
	if len(runes) <= size {
		if len(runes) == 0 {
			return nil
		}
		return []string{s}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
