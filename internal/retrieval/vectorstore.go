package retrieval

import "time"

// VectorStore is the interface for vector storage and similarity search
// backends. The default implementation uses SQLite with brute-force cosine
// similarity, which is comfortable for a few thousand achievement rows.
type VectorStore interface {
	// Insert adds records to the store.
	Insert(records []Record) error

	// Search returns the top-K records most similar to the given vector.
	// May return fewer than topK, or none.
	Search(vector []float32, topK int) ([]ScoredRecord, error)

	// Count returns the number of stored records.
	Count() (int, error)

	// Clear removes all records. Used before a full reindex.
	Clear() error
}

// Record represents one indexed achievement document.
type Record struct {
	ID            string
	AchievementID string
	StudentName   string
	TextChunk     string
	Embedding     []float32
	CreatedAt     time.Time
}

// ScoredRecord is a Record with a similarity score attached.
type ScoredRecord struct {
	Record
	Score float32
}
