package dataquery

import (
	"strings"

	"github.com/pkoval/regassist/internal/engine"
	"github.com/pkoval/regassist/internal/records"
)

const subRouterSystemPrompt = `You are an expert query analyst. Classify the user's question about a student achievement table into exactly one category:

1. simple_filter: The question asks to find, list, or show values matching a condition on a single column, or to list an entire column (e.g., "show all students in the physics department", "list all approved achievements", "what are the names of all students?").
2. complex_analysis: The question requires grouping, counting, summing, ranking, or comparing across rows (e.g., "which department has earned the most credits?", "who are the top 5 students by credits awarded?", "how many achievements does each student have?").

Respond with ONLY the category name.`

func buildSubRouterPrompt(question string) []engine.Message {
	return []engine.Message{
		{Role: "system", Content: subRouterSystemPrompt},
		{Role: "user", Content: question},
	}
}

const filterSystemPrompt = `You are an expert at converting a question into a structured JSON filter over a table of student achievements.

The available columns are: %COLUMNS%.

Respond with a JSON object with exactly these keys:
- "column_to_filter": the column to filter on, or null when the question asks for an entire column with no condition.
- "filter_value": the value to match, or null when there is no condition.
- "column_to_return": the column whose values should be returned.

Examples:
Question: "show all students in the physics department"
{"column_to_filter": "department", "filter_value": "physics", "column_to_return": "name"}
Question: "what are the names of all students?"
{"column_to_filter": null, "filter_value": null, "column_to_return": "name"}

Respond with ONLY the JSON object.`

func buildFilterPrompt(question string) []engine.Message {
	system := strings.Replace(filterSystemPrompt, "%COLUMNS%", strings.Join(records.Columns(), ", "), 1)
	return []engine.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: question},
	}
}

func filterSchema() *engine.Schema {
	return &engine.Schema{
		Type: "object",
		Properties: map[string]engine.SchemaProperty{
			"column_to_filter": {Type: "string", Description: "column to filter on, null for no condition"},
			"filter_value":     {Type: "string", Description: "value to match, null for no condition"},
			"column_to_return": {Type: "string", Description: "column whose values are returned"},
		},
		Required: []string{"column_to_return"},
	}
}

const planSystemPrompt = `You are an expert data analyst. Convert the user's analytical question about a table of student achievements into a JSON aggregation plan.

The available columns are: %COLUMNS%.
The only numeric column is credit_awarded.

Respond with a JSON object with exactly these keys:
- "groupby_col": the column to group rows by.
- "agg_col": the column to aggregate within each group.
- "agg_func": one of "sum", "count", or "idxmax". Use "idxmax" when the question asks for the single group with the highest total.
- "sort_ascending": true to rank groups from lowest to highest, false otherwise.
- "top_n": how many groups to return.
- "column_to_return": the column the user wants to see, usually the same as groupby_col.

Examples:
Question: "which department has earned the most credits?"
{"groupby_col": "department", "agg_col": "credit_awarded", "agg_func": "idxmax", "sort_ascending": false, "top_n": 1, "column_to_return": "department"}
Question: "who are the top 5 students by credits awarded?"
{"groupby_col": "name", "agg_col": "credit_awarded", "agg_func": "sum", "sort_ascending": false, "top_n": 5, "column_to_return": "name"}

Respond with ONLY the JSON object.`

func buildPlanPrompt(question string) []engine.Message {
	system := strings.Replace(planSystemPrompt, "%COLUMNS%", strings.Join(records.Columns(), ", "), 1)
	return []engine.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: question},
	}
}

func planSchema() *engine.Schema {
	return &engine.Schema{
		Type: "object",
		Properties: map[string]engine.SchemaProperty{
			"groupby_col":      {Type: "string", Description: "column to group by"},
			"agg_col":          {Type: "string", Description: "column to aggregate"},
			"agg_func":         {Type: "string", Description: "sum, count, or idxmax"},
			"sort_ascending":   {Type: "boolean", Description: "rank lowest to highest when true"},
			"top_n":            {Type: "integer", Description: "number of groups to return"},
			"column_to_return": {Type: "string", Description: "column the user wants to see"},
		},
		Required: []string{"groupby_col", "agg_func"},
	}
}
