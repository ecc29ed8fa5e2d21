package api

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pkoval/regassist/internal/retrieval"
)

type mockMCPRetriever struct {
	docs []retrieval.Document
	err  error
}

func (m *mockMCPRetriever) Retrieve(ctx context.Context, query string, topK int) ([]retrieval.Document, error) {
	return m.docs, m.err
}

func callTool(t *testing.T, deps MCPDeps, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := NewMCPServer(deps)

	reqJSON, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}

	respMsg := s.HandleMessage(context.Background(), reqJSON)
	respJSON, err := json.Marshal(respMsg)
	if err != nil {
		t.Fatalf("marshaling response: %v", err)
	}

	var resp struct {
		Result mcp.CallToolResult `json:"result"`
	}
	if err := json.Unmarshal(respJSON, &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return &resp.Result
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		b, _ := json.Marshal(res.Content[0])
		var generic struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(b, &generic); err != nil {
			t.Fatalf("unexpected content type %T", res.Content[0])
		}
		return generic.Text
	}
	return tc.Text
}

func TestMCPAsk(t *testing.T) {
	o := &mockOrchestrator{answer: "The result is: Physics"}
	deps := MCPDeps{Orchestrator: o, Retriever: &mockMCPRetriever{}}

	res := callTool(t, deps, "ask", map[string]any{"question": "which department leads?"})
	if res.IsError {
		t.Fatalf("tool errored: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "The result is: Physics" {
		t.Errorf("result = %q", got)
	}
	if o.lastQ != "which department leads?" {
		t.Errorf("orchestrator got %q", o.lastQ)
	}
}

func TestMCPAsk_MissingQuestion(t *testing.T) {
	deps := MCPDeps{Orchestrator: &mockOrchestrator{}, Retriever: &mockMCPRetriever{}}

	res := callTool(t, deps, "ask", map[string]any{})
	if !res.IsError {
		t.Error("expected error result for missing question")
	}
}

func TestMCPSearchRecords(t *testing.T) {
	ret := &mockMCPRetriever{docs: []retrieval.Document{
		{ID: "v1", AchievementID: "A1", StudentName: "Alice Johnson", Content: "Student Name: Alice Johnson.", Score: 0.91},
	}}
	deps := MCPDeps{Orchestrator: &mockOrchestrator{}, Retriever: ret}

	res := callTool(t, deps, "search_records", map[string]any{"query": "alice"})
	if res.IsError {
		t.Fatalf("tool errored: %s", resultText(t, res))
	}

	var results []struct {
		ID          string  `json:"id"`
		StudentName string  `json:"student_name"`
		Score       float32 `json:"score"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &results); err != nil {
		t.Fatalf("decoding results: %v", err)
	}
	if len(results) != 1 || results[0].ID != "v1" || results[0].StudentName != "Alice Johnson" {
		t.Errorf("results = %+v", results)
	}
}

func TestMCPSearchRecords_Empty(t *testing.T) {
	deps := MCPDeps{Orchestrator: &mockOrchestrator{}, Retriever: &mockMCPRetriever{}}

	res := callTool(t, deps, "search_records", map[string]any{"query": "nobody"})
	if res.IsError {
		t.Fatal("unexpected error result")
	}
	if got := resultText(t, res); got != "[]" {
		t.Errorf("result = %q, want empty array", got)
	}
}

func TestMCPSearchRecords_RetrieverFailure(t *testing.T) {
	deps := MCPDeps{
		Orchestrator: &mockOrchestrator{},
		Retriever:    &mockMCPRetriever{err: fmt.Errorf("store down")},
	}

	res := callTool(t, deps, "search_records", map[string]any{"query": "alice"})
	if !res.IsError {
		t.Error("expected error result when retrieval fails")
	}
}
