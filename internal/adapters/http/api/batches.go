package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/eeat/internal/adapters/export"
	"github.com/okian/eeat/internal/domain/model"
)

// BatchesHandler handles batch submission, reads and manual ratings.
type BatchesHandler struct {
	deps Dependencies
	now  func() time.Time
}

// NewBatchesHandler creates a new batches handler.
func NewBatchesHandler(deps Dependencies) *BatchesHandler {
	return &BatchesHandler{deps: deps, now: time.Now}
}

// submitRequest accepts either a URL array or newline-separated text.
type submitRequest struct {
	URLs []string `json:"urls"`
	Text string   `json:"text"`
}

type ratingRequest struct {
	Rating *int `json:"rating"`
}

// HandleSubmit handles POST /batches requests.
func (h *BatchesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_batch"
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.URLs) == 0 && strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errMissingURLs))
		return
	}

	text := req.Text
	if len(req.URLs) > 0 {
		text = strings.Join(req.URLs, "\n")
	}
	b, err := h.deps.Submit(r.Context(), text)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Location", "/batches/"+b.ID)
	writeJSON(w, http.StatusAccepted, b)
}

// HandleList handles GET /batches requests.
func (h *BatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Batches(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /batches/{id} requests.
func (h *BatchesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	b, err := h.deps.Batch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleSummary handles GET /batches/{id}/summary requests.
func (h *BatchesHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	e, err := h.deps.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleReview handles GET /batches/{id}/review requests.
func (h *BatchesHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.ManualReview(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func pageID(r *http.Request) (int, error) {
	n, err := strconv.Atoi(r.PathValue("page"))
	if err != nil || n < 0 {
		return 0, wrapKind("api.page", ErrBadRequest, errBadPage)
	}
	return n, nil
}

// HandlePage handles GET /batches/{id}/pages/{page} requests.
func (h *BatchesHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	n, err := pageID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	d, err := h.deps.Page(r.Context(), r.PathValue("id"), n)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandlePageScore handles GET /batches/{id}/pages/{page}/score requests.
func (h *BatchesHandler) HandlePageScore(w http.ResponseWriter, r *http.Request) {
	n, err := pageID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	s, err := h.deps.PageScore(r.Context(), r.PathValue("id"), n)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandlePageRecommendations handles GET /batches/{id}/pages/{page}/recommendations requests.
func (h *BatchesHandler) HandlePageRecommendations(w http.ResponseWriter, r *http.Request) {
	n, err := pageID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	recs, err := h.deps.PageRecommendations(r.Context(), r.PathValue("id"), n)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func decodeRating(r *http.Request, op string) (model.Rating, error) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return 0, wrapKind(op, ErrBadRequest, err)
	}
	if req.Rating == nil {
		return 0, wrapKind(op, ErrBadRequest, errMissingRating)
	}
	return model.Rating(*req.Rating), nil
}

// HandleSetPageRating handles PUT /batches/{id}/pages/{page}/ratings/{signal} requests.
func (h *BatchesHandler) HandleSetPageRating(w http.ResponseWriter, r *http.Request) {
	n, err := pageID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	rating, err := decodeRating(r, "api.set_page_rating")
	if err != nil {
		writeErr(w, err)
		return
	}
	s, err := h.deps.SetPageRating(r.Context(), r.PathValue("id"), n, r.PathValue("signal"), rating)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleDomain handles GET /batches/{id}/domain requests.
func (h *BatchesHandler) HandleDomain(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.DomainScore(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleDomainRecommendations handles GET /batches/{id}/domain/recommendations requests.
func (h *BatchesHandler) HandleDomainRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.deps.DomainRecommendations(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// HandleSetDomainRating handles PUT /batches/{id}/domain/ratings/{signal} requests.
func (h *BatchesHandler) HandleSetDomainRating(w http.ResponseWriter, r *http.Request) {
	rating, err := decodeRating(r, "api.set_domain_rating")
	if err != nil {
		writeErr(w, err)
		return
	}
	d, err := h.deps.SetDomainRating(r.Context(), r.PathValue("id"), r.PathValue("signal"), rating)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleExport handles GET /batches/{id}/export?kind=page|pages|summary|domain requests.
func (h *BatchesHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	q := r.URL.Query()
	kind := q.Get("kind")
	if kind == "" {
		kind = export.KindSummary
	}
	n := 0
	if kind == export.KindPage {
		var err error
		if n, err = strconv.Atoi(q.Get("page")); err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errBadPage))
			return
		}
	}

	b, err := h.deps.Batch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, kind, h.deps.Catalog(), b, n, h.now()); err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(kind, b, n)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
