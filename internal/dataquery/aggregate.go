package dataquery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pkoval/regassist/internal/records"
)

const defaultTopN = 10

// AggregationPlan is the structured form of an analytical question. The
// plan is data, not code: agg_func is restricted to a closed set and the
// execution logic below is fixed.
type AggregationPlan struct {
	GroupByCol     string `json:"groupby_col"`
	AggCol         string `json:"agg_col"`
	AggFunc        string `json:"agg_func"`
	SortAscending  *bool  `json:"sort_ascending"`
	TopN           *int   `json:"top_n"`
	ColumnToReturn string `json:"column_to_return"`
}

func (e *Engine) runAggregation(ctx context.Context, question string) string {
	raw, err := e.engine.Chat(ctx, e.model, buildPlanPrompt(question), planSchema())
	if err != nil {
		slog.Error("aggregation plan call failed", "error", err)
		return msgGenericError
	}

	plan, err := parsePlan(raw)
	if err != nil {
		slog.Warn("unusable aggregation plan", "error", err, "raw", raw)
		return msgPlanApology
	}

	answer, err := e.executePlan(plan)
	if err != nil {
		slog.Warn("aggregation execution failed", "error", err, "raw", raw)
		return msgPlanApology
	}
	return answer
}

func parsePlan(raw string) (AggregationPlan, error) {
	var plan AggregationPlan
	if err := json.Unmarshal([]byte(extractJSON(raw)), &plan); err != nil {
		return AggregationPlan{}, fmt.Errorf("decoding aggregation plan: %w", err)
	}
	if plan.GroupByCol == "" {
		return AggregationPlan{}, fmt.Errorf("aggregation plan missing groupby_col")
	}
	switch plan.AggFunc {
	case "count":
	case "sum", "idxmax":
		if plan.AggCol == "" {
			return AggregationPlan{}, fmt.Errorf("agg_func %q requires agg_col", plan.AggFunc)
		}
	default:
		return AggregationPlan{}, fmt.Errorf("unsupported agg_func %q", plan.AggFunc)
	}
	return plan, nil
}

// executePlan groups the table by groupby_col, aggregates per group, and
// formats the ranked group keys. Ties rank by key ascending so repeated
// queries produce identical output.
func (e *Engine) executePlan(plan AggregationPlan) (string, error) {
	totals := make(map[string]float64)
	for _, rec := range e.table.Rows() {
		key, err := rec.Field(plan.GroupByCol)
		if err != nil {
			return "", err
		}
		switch plan.AggFunc {
		case "count":
			totals[key]++
		default: // sum, idxmax
			v, err := rec.Numeric(plan.AggCol)
			if err != nil {
				return "", err
			}
			totals[key] += v
		}
	}

	if len(totals) == 0 {
		return msgNoResults, nil
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}

	if plan.AggFunc == "idxmax" {
		sort.Slice(keys, func(i, j int) bool {
			if totals[keys[i]] != totals[keys[j]] {
				return totals[keys[i]] > totals[keys[j]]
			}
			return keys[i] < keys[j]
		})
		return "The result is: " + records.Title(keys[0]), nil
	}

	ascending := plan.SortAscending != nil && *plan.SortAscending
	sort.Slice(keys, func(i, j int) bool {
		if totals[keys[i]] != totals[keys[j]] {
			if ascending {
				return totals[keys[i]] < totals[keys[j]]
			}
			return totals[keys[i]] > totals[keys[j]]
		}
		return keys[i] < keys[j]
	})

	topN := defaultTopN
	if plan.TopN != nil && *plan.TopN > 0 {
		topN = *plan.TopN
	}
	if len(keys) > topN {
		keys = keys[:topN]
	}

	return formatList(keys), nil
}
