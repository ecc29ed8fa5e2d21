package dataquery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// FilterSpec is the structured form of a simple filtering question. Nil
// pointer fields mean "no condition": list the whole return column.
type FilterSpec struct {
	ColumnToFilter *string `json:"column_to_filter"`
	FilterValue    *string `json:"filter_value"`
	ColumnToReturn string  `json:"column_to_return"`
}

func (e *Engine) runFilter(ctx context.Context, question string) string {
	raw, err := e.engine.Chat(ctx, e.model, buildFilterPrompt(question), filterSchema())
	if err != nil {
		slog.Error("filter extraction call failed", "error", err)
		return msgGenericError
	}

	spec, err := parseFilterSpec(raw)
	if err != nil {
		slog.Warn("unusable filter spec", "error", err, "raw", raw)
		return msgFilterApology
	}

	answer, err := e.applyFilter(spec)
	if err != nil {
		slog.Warn("filter execution failed", "error", err, "raw", raw)
		return msgFilterApology
	}
	return answer
}

func parseFilterSpec(raw string) (FilterSpec, error) {
	var spec FilterSpec
	if err := json.Unmarshal([]byte(extractJSON(raw)), &spec); err != nil {
		return FilterSpec{}, fmt.Errorf("decoding filter spec: %w", err)
	}
	if spec.ColumnToReturn == "" {
		return FilterSpec{}, fmt.Errorf("filter spec missing column_to_return")
	}
	return spec, nil
}

// applyFilter executes the spec against the table. A spec with only one
// half of the condition present degrades to an unfiltered listing. Filter
// values are lower-cased to meet the table's comparison-column invariant;
// matching is exact equality, not substring.
func (e *Engine) applyFilter(spec FilterSpec) (string, error) {
	conditioned := spec.ColumnToFilter != nil && *spec.ColumnToFilter != "" &&
		spec.FilterValue != nil && *spec.FilterValue != ""

	var want string
	if conditioned {
		want = strings.ToLower(*spec.FilterValue)
	}

	var values []string
	for _, rec := range e.table.Rows() {
		if conditioned {
			got, err := rec.Field(*spec.ColumnToFilter)
			if err != nil {
				return "", err
			}
			if got != want {
				continue
			}
		}
		v, err := rec.Field(spec.ColumnToReturn)
		if err != nil {
			return "", err
		}
		values = append(values, v)
	}

	return formatList(dedupeSorted(values)), nil
}
