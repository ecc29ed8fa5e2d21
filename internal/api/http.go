package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pkoval/regassist/internal/pipeline"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Answerer is the question-answering surface exposed over HTTP and MCP.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, pipeline.Meta)
	Ready(ctx context.Context) bool
}

// Reindexer rebuilds the vector index on demand.
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// Deps holds dependencies for the HTTP handler.
type Deps struct {
	Orchestrator Answerer
	Indexer      Reindexer
	Token        string
}

// NewHandler returns the REST API. The question endpoint is open; index
// administration requires the bearer token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth(deps))
	r.Post("/get_response", handleGetResponse(deps))

	r.Group(func(g chi.Router) {
		g.Use(BearerAuth(deps.Token))
		g.Post("/reindex", handleReindex(deps))
	})

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !deps.Orchestrator.Ready(r.Context()) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded","detail":"model runtime unreachable"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}
}

type questionRequest struct {
	Query string `json:"query"`
}

func handleGetResponse(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		if deps.Orchestrator == nil {
			httpError(w, http.StatusInternalServerError, "api_error", "AI components not available")
			return
		}

		var req questionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query is required and must not be empty")
			return
		}

		answer, meta := deps.Orchestrator.Answer(r.Context(), req.Query)
		slog.Debug("question answered", "route", meta.Route, "duration_ms", meta.DurationMs)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": answer})
	}
}

func handleReindex(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := deps.Indexer.Reindex(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reindex failed: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"vectors": n,
		})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
