package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkoval/regassist/internal/engine"
	"github.com/pkoval/regassist/internal/intent"
	"github.com/pkoval/regassist/internal/portfolio"
)

// The generic fallback when a strategy fails outright. Matches the
// data-query engine's wording so callers see one voice.
const msgInternalError = "Sorry, I encountered an error while processing your query."

// IntentRouter classifies a question into one of the three routes.
type IntentRouter interface {
	Route(ctx context.Context, question string) intent.Route
}

// PortfolioSynthesizer answers single-student questions over the vector index.
type PortfolioSynthesizer interface {
	Synthesize(ctx context.Context, question string) (portfolio.Result, error)
}

// DataQuerier answers filtering and analytical questions over the table.
type DataQuerier interface {
	Query(ctx context.Context, question string) string
}

// Meta captures diagnostic information about one answered question.
type Meta struct {
	Route      intent.Route
	DurationMs int64
}

// Orchestrator dispatches each question to one of three strategies:
// portfolio synthesis, structured data query, or plain conversation.
type Orchestrator struct {
	router    IntentRouter
	portfolio PortfolioSynthesizer
	data      DataQuerier
	engine    engine.Engine
	model     string
}

// NewOrchestrator wires the three strategies together. Fails fast when any
// dependency is missing.
func NewOrchestrator(router IntentRouter, p PortfolioSynthesizer, d DataQuerier, eng engine.Engine, model string) (*Orchestrator, error) {
	if router == nil {
		return nil, fmt.Errorf("orchestrator requires a router")
	}
	if p == nil {
		return nil, fmt.Errorf("orchestrator requires a portfolio synthesizer")
	}
	if d == nil {
		return nil, fmt.Errorf("orchestrator requires a data query engine")
	}
	if eng == nil {
		return nil, fmt.Errorf("orchestrator requires an engine")
	}
	return &Orchestrator{router: router, portfolio: p, data: d, engine: eng, model: model}, nil
}

// Answer routes and answers one question. The returned string is always a
// complete user-facing answer; strategy failures degrade to a fixed
// apology rather than an error.
func (o *Orchestrator) Answer(ctx context.Context, question string) (answer string, meta Meta) {
	start := time.Now()
	defer func() {
		meta.DurationMs = time.Since(start).Milliseconds()
	}()

	meta.Route = o.router.Route(ctx, question)
	slog.Info("routed question", "route", meta.Route)

	switch meta.Route {
	case intent.RoutePortfolio:
		res, err := o.portfolio.Synthesize(ctx, question)
		if err != nil {
			slog.Error("portfolio synthesis failed", "error", err)
			answer = msgInternalError
			return
		}
		answer = res.Answer
	case intent.RouteDataQuery:
		answer = o.data.Query(ctx, question)
	default:
		answer = o.converse(ctx, question)
	}
	return
}

const conversationSystemPrompt = `You are a friendly and helpful assistant for a University Registrar's office. Answer the user's question conversationally and concisely. Do not invent student records; if asked about specific student data you do not have, suggest rephrasing the question as a records query.`

// converse handles chit-chat and general-knowledge questions with a plain
// chat completion, no retrieval and no table access.
func (o *Orchestrator) converse(ctx context.Context, question string) string {
	msgs := []engine.Message{
		{Role: "system", Content: conversationSystemPrompt},
		{Role: "user", Content: question},
	}
	answer, err := o.engine.Chat(ctx, o.model, msgs, nil)
	if err != nil {
		slog.Error("conversation fallback failed", "error", err)
		return msgInternalError
	}
	return answer
}

// Ready reports whether the underlying model runtime is reachable.
func (o *Orchestrator) Ready(ctx context.Context) bool {
	return o.engine.IsRunning(ctx)
}
