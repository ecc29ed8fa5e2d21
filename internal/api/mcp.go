package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pkoval/regassist/internal/retrieval"
)

// MCPRetriever abstracts semantic search for the MCP layer.
type MCPRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]retrieval.Document, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Orchestrator Answerer
	Retriever    MCPRetriever
}

// NewMCPServer creates an MCP server exposing the question-answering
// pipeline and raw semantic search over the achievement index.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"regassist",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("regassist answers questions about student achievement records: portfolio summaries, filtered listings, and aggregate analysis."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("ask",
			mcp.WithDescription("Ask a natural-language question about student achievement records. Handles single-student portfolio summaries, filtered listings, and aggregate analysis."),
			mcp.WithString("question", mcp.Description("The question to answer"), mcp.Required()),
		),
		mcpAsk(deps),
	)

	s.AddTool(
		mcp.NewTool("search_records",
			mcp.WithDescription("Semantically search raw achievement records and return the closest matches with similarity scores."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
		),
		mcpSearchRecords(deps),
	)

	return s
}

func mcpAsk(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		answer, _ := deps.Orchestrator.Answer(ctx, question)
		return mcpText(answer), nil
	}
}

func mcpSearchRecords(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 5)
		if limit <= 0 {
			limit = 5
		}
		if limit > 50 {
			limit = 50
		}

		docs, err := deps.Retriever.Retrieve(ctx, query, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}

		if len(docs) == 0 {
			return mcpText("[]"), nil
		}

		type docResult struct {
			ID            string  `json:"id"`
			AchievementID string  `json:"achievement_id"`
			StudentName   string  `json:"student_name"`
			Text          string  `json:"text"`
			Score         float32 `json:"score"`
		}

		results := make([]docResult, len(docs))
		for i, d := range docs {
			results[i] = docResult{
				ID:            d.ID,
				AchievementID: d.AchievementID,
				StudentName:   d.StudentName,
				Text:          d.Content,
				Score:         d.Score,
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
