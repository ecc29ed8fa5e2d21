package dataquery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/pkoval/regassist/internal/engine"
	"github.com/pkoval/regassist/internal/records"
)

// Fixed user-facing strings. Every branch of the engine terminates in a
// formatted answer or one of these; callers never see a raw error.
const (
	msgNoResults     = "No results found for that query."
	msgFilterApology = "Sorry, I had trouble understanding the structure of that query."
	msgPlanApology   = "Sorry, I had trouble creating a plan for that analytical query."
	msgGenericError  = "Sorry, I encountered an error while processing your query."
)

// query kinds produced by the internal sub-router.
const (
	kindSimpleFilter    = "simple_filter"
	kindComplexAnalysis = "complex_analysis"
)

// Engine answers filtering, listing, and analytical questions over the
// achievement table. Each call sub-routes the question into the
// simple-filter or complex-analysis path, extracts a structured query via
// the chat model, and executes it with fixed logic. Model output is never
// executed as code; the aggregation plan is a closed set of operations.
type Engine struct {
	engine engine.Engine
	model  string
	table  *records.Table
}

// New creates a data-query Engine over the immutable table. Fails fast on
// missing dependencies.
func New(eng engine.Engine, model string, table *records.Table) (*Engine, error) {
	if eng == nil {
		return nil, fmt.Errorf("data query engine requires an engine")
	}
	if table == nil {
		return nil, fmt.Errorf("data query engine requires a record table")
	}
	return &Engine{engine: eng, model: model, table: table}, nil
}

// Query classifies and answers the question. The returned string is always
// a human-readable answer or apology; errors never escape this boundary.
func (e *Engine) Query(ctx context.Context, question string) string {
	raw, err := e.engine.Chat(ctx, e.model, buildSubRouterPrompt(question), nil)
	if err != nil {
		slog.Error("data query sub-routing failed", "error", err)
		return msgGenericError
	}

	kind := classifyKind(raw)
	slog.Info("classified data query", "kind", kind)

	if kind == kindSimpleFilter {
		return e.runFilter(ctx, question)
	}
	return e.runAggregation(ctx, question)
}

// classifyKind maps raw sub-router output to a query kind by substring
// containment, defaulting to complex_analysis when neither marker matches.
func classifyKind(raw string) string {
	if strings.Contains(raw, kindSimpleFilter) {
		return kindSimpleFilter
	}
	return kindComplexAnalysis
}

// formatList renders deduplicated values as a 1-indexed, title-cased list.
func formatList(values []string) string {
	if len(values) == 0 {
		return msgNoResults
	}
	var sb strings.Builder
	sb.WriteString("Here are the results:")
	for i, v := range values {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, records.Title(v))
	}
	return sb.String()
}

// dedupeSorted returns the unique values in ascending order.
func dedupeSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
