package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkoval/regassist/internal/engine"
)

// Route is the top-level classification of a user question.
type Route string

const (
	// RoutePortfolio is a summary request about a single, specific student.
	RoutePortfolio Route = "portfolio_summary"
	// RouteDataQuery is a filtering, listing, or analytical question over
	// the full record set.
	RouteDataQuery Route = "general_query"
	// RouteConversation is everything else: greetings, chit-chat, general
	// knowledge. It is also the fail-soft default.
	RouteConversation Route = "general_conversation"
)

// Router classifies a raw user question into one of the three routes by
// asking the chat model which tool fits. The model is a fallible oracle:
// its output is matched by substring, and anything unrecognized falls
// through to RouteConversation. No retries.
type Router struct {
	engine engine.Engine
	model  string
}

// NewRouter creates a Router using the given engine and chat model name.
func NewRouter(eng engine.Engine, model string) *Router {
	return &Router{engine: eng, model: model}
}

// Route classifies the question. Engine errors are logged and resolve to
// RouteConversation; worst case is an under-informative conversational
// answer, never a failed request.
func (r *Router) Route(ctx context.Context, question string) Route {
	raw, err := r.engine.Chat(ctx, r.model, BuildPrompt(question), nil)
	if err != nil {
		slog.Warn("intent routing chat failed, defaulting to conversation", "error", err)
		return RouteConversation
	}
	return Classify(raw)
}

// Classify maps raw classifier output to a Route by substring containment.
// portfolio_summary is checked before general_query: when the model emits
// both markers, the more specific tool wins.
func Classify(raw string) Route {
	switch {
	case strings.Contains(raw, string(RoutePortfolio)):
		return RoutePortfolio
	case strings.Contains(raw, string(RouteDataQuery)):
		return RouteDataQuery
	default:
		return RouteConversation
	}
}
