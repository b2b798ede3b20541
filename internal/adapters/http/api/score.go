package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/eeat/internal/app"
	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/model"
)

// ScoreDependencies defines the interface for stateless scoring.
type ScoreDependencies interface {
	Catalog() *catalog.Catalog
	Score(ctx context.Context, intent model.Intent, ratings model.Ratings) (service.ScoreResult, error)
}

// ScoreHandler handles catalog and stateless scoring requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

type scoreRequest struct {
	Intent  string        `json:"intent"`
	Ratings model.Ratings `json:"ratings"`
}

// HandleScore handles POST /score requests.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	intent, err := model.ParseIntent(req.Intent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Ratings == nil {
		req.Ratings = model.Ratings{}
	}
	res, err := h.deps.Score(r.Context(), intent, req.Ratings)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type catalogResponse struct {
	Version string          `json:"version"`
	Signals int             `json:"signals"`
	Groups  []catalog.Group `json:"groups"`
}

// HandleCatalog handles GET /catalog requests. format=yaml returns the
// catalog in the file format accepted by catalog_path.
func (h *ScoreHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := h.deps.Catalog()
	if r.URL.Query().Get("format") == "yaml" {
		data, err := catalog.Marshal(cat)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Version: cat.Version(),
		Signals: cat.Len(),
		Groups:  cat.Groups(),
	})
}
