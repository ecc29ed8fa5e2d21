package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/pkoval/regassist/internal/engine"
	"github.com/pkoval/regassist/internal/retrieval"
)

const (
	defaultTopK  = 8
	defaultFetch = 20
)

// DocRetriever abstracts semantic search over the achievement index.
type DocRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]retrieval.Document, error)
}

// Result is a synthesized answer plus the documents it was grounded on.
// Context is returned for traceability: callers can log or surface which
// records contributed to the answer.
type Result struct {
	Answer  string
	Context []retrieval.Document
}

// Synthesizer answers single-student portfolio questions: it rewrites the
// question into a search query, retrieves candidate achievement documents,
// reranks them by proper-noun overlap, and asks the chat model for an
// answer grounded only in the surviving documents.
type Synthesizer struct {
	engine    engine.Engine
	model     string
	retriever DocRetriever
	topK      int
	fetchK    int
}

// NewSynthesizer creates a Synthesizer. It fails fast when the engine or
// retriever is missing; callers must not invoke a half-constructed
// pipeline. topK <= 0 selects the default (8).
func NewSynthesizer(eng engine.Engine, model string, retriever DocRetriever, topK int) (*Synthesizer, error) {
	if eng == nil {
		return nil, fmt.Errorf("portfolio synthesizer requires an engine")
	}
	if retriever == nil {
		return nil, fmt.Errorf("portfolio synthesizer requires a retriever")
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	fetchK := defaultFetch
	if topK > fetchK {
		fetchK = topK
	}
	return &Synthesizer{
		engine:    eng,
		model:     model,
		retriever: retriever,
		topK:      topK,
		fetchK:    fetchK,
	}, nil
}

// Synthesize runs the full RAG pipeline for one question. Errors from the
// engine or retriever propagate; the orchestrator maps them to a generic
// internal-error message.
func (s *Synthesizer) Synthesize(ctx context.Context, question string) (Result, error) {
	searchQuery, err := s.rewriteQuery(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("rewriting query: %w", err)
	}

	docs, err := s.retriever.Retrieve(ctx, searchQuery, s.fetchK)
	if err != nil {
		return Result{}, fmt.Errorf("retrieving documents: %w", err)
	}

	docs = s.rerank(question, docs)

	answer, err := s.engine.Chat(ctx, s.model, buildAnswerPrompt(question, docs), nil)
	if err != nil {
		return Result{}, fmt.Errorf("synthesizing answer: %w", err)
	}

	return Result{Answer: answer, Context: docs}, nil
}

// rewriteQuery asks the chat model for a standalone, keyword-rich
// paraphrase better suited for nearest-neighbor search.
func (s *Synthesizer) rewriteQuery(ctx context.Context, question string) (string, error) {
	raw, err := s.engine.Chat(ctx, s.model, buildRewritePrompt(question), nil)
	if err != nil {
		return "", err
	}
	rewritten := strings.TrimSpace(raw)
	if rewritten == "" {
		return question, nil
	}
	return rewritten, nil
}

// rerank keeps only documents mentioning a candidate proper name from the
// original question, preserving retrieval order, then truncates to topK.
// With no candidate names the rerank is a pure truncation.
//
// The name detector is a heuristic proxy for entity recognition: it both
// over-triggers on capitalized non-name words and misses lower-cased
// names. Precision on single-student questions is what it buys.
func (s *Synthesizer) rerank(question string, docs []retrieval.Document) []retrieval.Document {
	names := candidateNames(question)
	if len(names) == 0 {
		return truncate(docs, s.topK)
	}

	kept := make([]retrieval.Document, 0, len(docs))
	for _, doc := range docs {
		content := strings.ToLower(doc.Content)
		for _, name := range names {
			if strings.Contains(content, strings.ToLower(name)) {
				kept = append(kept, doc)
				break
			}
		}
	}
	slog.Info("reranked retrieved documents", "initial", len(docs), "kept", len(kept))
	return truncate(kept, s.topK)
}

// candidateNames returns the capitalized tokens of the question longer
// than 2 runes.
func candidateNames(question string) []string {
	var names []string
	for _, word := range strings.Fields(question) {
		runes := []rune(word)
		if len(runes) > 2 && unicode.IsUpper(runes[0]) {
			names = append(names, word)
		}
	}
	return names
}

func truncate(docs []retrieval.Document, k int) []retrieval.Document {
	if len(docs) > k {
		return docs[:k]
	}
	return docs
}
