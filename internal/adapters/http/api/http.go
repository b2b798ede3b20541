// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/eeat/internal/adapters/export"
	"github.com/okian/eeat/internal/adapters/llm/anthropic"
	"github.com/okian/eeat/internal/adapters/repository"
	service "github.com/okian/eeat/internal/app"
	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/dedupe"
	"github.com/okian/eeat/internal/domain/ingest"
	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/internal/domain/recommend"
	"github.com/okian/eeat/internal/domain/report"
	"github.com/okian/eeat/internal/domain/review"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Catalog() *catalog.Catalog

	Submit(ctx context.Context, text string) (*model.Batch, error)
	SubmitURLs(ctx context.Context, urls []string) (*model.Batch, error)
	Batch(ctx context.Context, id string) (*model.Batch, error)
	Batches(ctx context.Context) ([]repository.Summary, error)

	Page(ctx context.Context, id string, pageID int) (service.PageDetail, error)
	PageScore(ctx context.Context, id string, pageID int) (report.PageSummary, error)
	PageRecommendations(ctx context.Context, id string, pageID int) ([]recommend.Recommendation, error)
	SetPageRating(ctx context.Context, id string, pageID int, signalID string, r model.Rating) (report.PageSummary, error)

	DomainScore(ctx context.Context, id string) (service.DomainDetail, error)
	DomainRecommendations(ctx context.Context, id string) ([]recommend.Recommendation, error)
	SetDomainRating(ctx context.Context, id, signalID string, r model.Rating) (report.DomainSummary, error)

	ManualReview(ctx context.Context, id string) ([]review.Item, error)
	Summary(ctx context.Context, id string) (report.Executive, error)

	Score(ctx context.Context, intent model.Intent, ratings model.Ratings) (service.ScoreResult, error)
	Classify(ctx context.Context, url, apiKey string) (anthropic.Result, error)
	Stats(ctx context.Context) (service.Stats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	batchesHandler *BatchesHandler
	analyzeHandler *AnalyzeHandler
	scoreHandler   *ScoreHandler
	allowOrigin    string
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithAllowOrigin sets the Access-Control-Allow-Origin value.
func WithAllowOrigin(origin string) ServerOption {
	return func(s *Server) {
		if origin != "" {
			s.allowOrigin = origin
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		batchesHandler: NewBatchesHandler(deps),
		analyzeHandler: NewAnalyzeHandler(deps),
		scoreHandler:   NewScoreHandler(deps),
		allowOrigin:    "*",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	b := s.batchesHandler

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /catalog", MetricsMiddleware(s.scoreHandler.HandleCatalog, "catalog"))
	mux.HandleFunc("POST /score", MetricsMiddleware(s.scoreHandler.HandleScore, "score"))
	mux.HandleFunc("POST /api/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))

	mux.HandleFunc("POST /batches", MetricsMiddleware(b.HandleSubmit, "batches_submit"))
	mux.HandleFunc("GET /batches", MetricsMiddleware(b.HandleList, "batches_list"))
	mux.HandleFunc("GET /batches/{id}", MetricsMiddleware(b.HandleGet, "batch"))
	mux.HandleFunc("GET /batches/{id}/summary", MetricsMiddleware(b.HandleSummary, "batch_summary"))
	mux.HandleFunc("GET /batches/{id}/review", MetricsMiddleware(b.HandleReview, "batch_review"))
	mux.HandleFunc("GET /batches/{id}/export", MetricsMiddleware(b.HandleExport, "batch_export"))
	mux.HandleFunc("GET /batches/{id}/pages/{page}", MetricsMiddleware(b.HandlePage, "page"))
	mux.HandleFunc("GET /batches/{id}/pages/{page}/score", MetricsMiddleware(b.HandlePageScore, "page_score"))
	mux.HandleFunc("GET /batches/{id}/pages/{page}/recommendations", MetricsMiddleware(b.HandlePageRecommendations, "page_recommendations"))
	mux.HandleFunc("PUT /batches/{id}/pages/{page}/ratings/{signal}", MetricsMiddleware(b.HandleSetPageRating, "page_rating"))
	mux.HandleFunc("GET /batches/{id}/domain", MetricsMiddleware(b.HandleDomain, "domain"))
	mux.HandleFunc("GET /batches/{id}/domain/recommendations", MetricsMiddleware(b.HandleDomainRecommendations, "domain_recommendations"))
	mux.HandleFunc("PUT /batches/{id}/domain/ratings/{signal}", MetricsMiddleware(b.HandleSetDomainRating, "domain_rating"))
}

// Handler returns mux wrapped with the CORS middleware.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	return CORSMiddleware(mux, s.allowOrigin)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeErr maps err onto a status code and error code.
func writeErr(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	var (
		apiErr    *anthropic.APIError
		unknown   *catalog.UnknownSignalError
		invalid   *model.InvalidRatingError
		schemaErr *ingest.SchemaError
	)
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, model.ErrPageNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrQueueFull), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, anthropic.ErrMissingAPIKey):
		return http.StatusUnauthorized, "missing_api_key"
	case errors.As(err, &apiErr):
		if apiErr.Status >= http.StatusBadRequest {
			return apiErr.Status, "upstream_error"
		}
		return http.StatusBadGateway, "upstream_error"
	case errors.As(err, &schemaErr), errors.Is(err, anthropic.ErrEmptyResponse):
		return http.StatusBadGateway, "invalid_verdict"
	case errors.Is(err, service.ErrBadRequest),
		errors.Is(err, ErrBadRequest),
		errors.As(err, &unknown),
		errors.As(err, &invalid),
		errors.Is(err, dedupe.ErrNoURLs),
		errors.Is(err, dedupe.ErrMixedHosts),
		errors.Is(err, export.ErrUnknownKind):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal_error"
}
