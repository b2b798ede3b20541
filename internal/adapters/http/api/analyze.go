package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/eeat/internal/adapters/llm/anthropic"
)

// APIKeyHeader carries a per-request classifier key.
const APIKeyHeader = "X-API-Key"

// AnalyzeDependencies defines the interface for the classifier proxy.
type AnalyzeDependencies interface {
	Classify(ctx context.Context, url, apiKey string) (anthropic.Result, error)
}

// AnalyzeHandler relays single-page classifications.
type AnalyzeHandler struct {
	deps AnalyzeDependencies
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps AnalyzeDependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

type analyzeRequest struct {
	URL string `json:"url"`
}

// HandleAnalyze handles POST /api/analyze requests. The validated verdict
// JSON is returned as produced by the classifier.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errMissingURL))
		return
	}

	res, err := h.deps.Classify(r.Context(), req.URL, r.Header.Get(APIKeyHeader))
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Raw)
}
