// Package service provides the core business service behind the HTTP API
// and the CLI: batch submission, scoring reads and manual rating edits.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/eeat/internal/adapters/llm/anthropic"
	"github.com/okian/eeat/internal/adapters/mq/queue"
	"github.com/okian/eeat/internal/adapters/mq/worker"
	"github.com/okian/eeat/internal/adapters/repository"
	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/dedupe"
	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/internal/domain/recommend"
	"github.com/okian/eeat/internal/domain/report"
	"github.com/okian/eeat/internal/domain/review"
	"github.com/okian/eeat/internal/domain/scoring"
	"github.com/okian/eeat/pkg/logger"
	"github.com/okian/eeat/pkg/metrics"
)

// Classifier is what the service needs from the page classifier: verdicts
// for the runner and relayed results for the analyze proxy.
type Classifier interface {
	worker.Classifier
	ClassifyWithKey(ctx context.Context, url, apiKey string) (anthropic.Result, error)
}

// Service implements the API dependencies for the scoring system.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog    *catalog.Catalog
	store      repository.Store
	queue      *queue.InMemoryQueue
	classifier Classifier
	runner     *worker.Runner
	parser     *dedupe.Parser

	// Configuration
	queueSize       int
	maxURLs         int
	ratePerSec      float64
	classifyTimeout time.Duration

	now   func() time.Time
	newID func() string

	// State
	started bool

	logger logger.Logger
}

// ScoreResult is the stateless scoring answer for a set of ratings.
type ScoreResult struct {
	Intent          model.Intent               `json:"intent"`
	Scores          scoring.Breakdown          `json:"scores"`
	Label           string                     `json:"label"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// PageDetail is a page record with its catalog-ordered rows.
type PageDetail struct {
	Page    model.Page         `json:"page"`
	Summary report.PageSummary `json:"summary"`
	Rows    []report.Row       `json:"rows"`
}

// DomainDetail is the domain summary with its catalog-ordered rows.
type DomainDetail struct {
	Summary report.DomainSummary `json:"summary"`
	Rows    []report.Row         `json:"rows"`
}

// Stats describes the service state for monitoring.
type Stats struct {
	Started        bool                 `json:"started"`
	QueueLength    int                  `json:"queue_length"`
	QueueCapacity  int                  `json:"queue_capacity"`
	Batches        int                  `json:"batches"`
	Pages          map[model.Status]int `json:"pages"`
	CatalogVersion string               `json:"catalog_version"`
	Signals        int                  `json:"signals"`
}

// New constructs a new Service with default configuration. Without a
// classifier option pages are sent to Anthropic with no default key.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize: 64,
		maxURLs:   dedupe.DefaultLimit,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.classifier == nil {
		s.classifier = anthropic.New(anthropic.Config{}, s.catalog)
	}
	s.parser = dedupe.NewParser(dedupe.WithLimit(s.maxURLs))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	runnerOpts := []worker.Option{worker.WithClock(s.now), worker.WithRateLimit(s.ratePerSec)}
	if s.classifyTimeout > 0 {
		runnerOpts = append(runnerOpts, worker.WithClassifyTimeout(s.classifyTimeout))
	}
	s.runner = worker.NewRunner(s.queue, s.classifier, s.store, s.catalog, runnerOpts...)
	return s
}

// Start launches the runner and re-queues batches left unfinished by a
// previous run.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting scoring service...")

	go s.runner.Run(context.WithoutCancel(ctx))
	s.started = true

	n, err := s.resume(ctx)
	if err != nil {
		return fmt.Errorf("resuming batches: %w", err)
	}
	s.logger.Info(ctx, "scoring service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxBatchURLs", s.maxURLs),
		logger.Int("resumed", n),
		logger.String("catalog", s.catalog.Version()),
	)
	return nil
}

// Stop shuts down the runner and releases the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping scoring service...")

	var errs []error
	if err := s.runner.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	_ = s.queue.Close()
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing store: %w", err))
	}

	s.started = false
	s.logger.Info(ctx, "scoring service stopped")
	return errors.Join(errs...)
}

// resume puts unfinished batches back on the queue, oldest first. Pages
// caught mid-analysis are reset to pending. Batches that do not fit in the
// queue stay pending in the store until the next start.
func (s *Service) resume(ctx context.Context) (int, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	n, left := 0, 0
	for i := len(list) - 1; i >= 0; i-- {
		sum := list[i]
		if sum.Done {
			continue
		}
		err := s.store.Update(ctx, sum.ID, func(b *model.Batch) error {
			for j := range b.Pages {
				if b.Pages[j].Status == model.StatusAnalyzing {
					b.Pages[j].Status = model.StatusPending
				}
			}
			return nil
		})
		if err != nil {
			return n, err
		}
		if left > 0 || !s.queue.Enqueue(ctx, queue.Job{BatchID: sum.ID, SubmittedAt: s.now()}) {
			left++
			continue
		}
		n++
	}
	if left > 0 {
		s.logger.Warn(ctx, "queue full, unfinished batches left pending",
			logger.Int("resumed", n),
			logger.Int("pending", left),
			logger.Int("queueSize", s.queueSize),
		)
	}
	return n, nil
}

// Catalog returns the signal catalog in use.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Submit prepares a newline-separated URL list and queues it as a new batch.
func (s *Service) Submit(ctx context.Context, text string) (*model.Batch, error) {
	res, err := s.parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if s.queue.Len(ctx) >= s.queue.Capacity() {
		return nil, ErrQueueFull
	}

	b := model.NewBatch(s.newID(), res.Host, res.URLs, s.now())
	if err := s.store.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("creating batch: %w", err)
	}
	if !s.queue.Enqueue(ctx, queue.Job{BatchID: b.ID, SubmittedAt: b.CreatedAt}) {
		_ = s.store.Update(context.WithoutCancel(ctx), b.ID, func(stored *model.Batch) error {
			for i := range stored.Pages {
				stored.Pages[i].Status = model.StatusError
				stored.Pages[i].Error = ErrQueueFull.Error()
			}
			return nil
		})
		return nil, ErrQueueFull
	}

	metrics.RecordBatchSubmitted()
	s.logger.Info(ctx, "batch submitted",
		logger.String("batch_id", b.ID),
		logger.String("host", b.Host),
		logger.Int("pages", len(b.Pages)),
		logger.Int("dropped", res.Dropped),
	)
	return b, nil
}

// SubmitURLs queues urls as a new batch.
func (s *Service) SubmitURLs(ctx context.Context, urls []string) (*model.Batch, error) {
	return s.Submit(ctx, strings.Join(urls, "\n"))
}

// Batch returns a batch by id.
func (s *Service) Batch(ctx context.Context, id string) (*model.Batch, error) {
	b, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return b, err
}

// Batches lists batch summaries, newest first.
func (s *Service) Batches(ctx context.Context) ([]repository.Summary, error) {
	return s.store.List(ctx)
}

func (s *Service) page(ctx context.Context, id string, pageID int) (*model.Batch, *model.Page, error) {
	b, err := s.Batch(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := b.Page(pageID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return b, p, nil
}

// Page returns a page record with its scored summary and rows.
func (s *Service) Page(ctx context.Context, id string, pageID int) (PageDetail, error) {
	_, p, err := s.page(ctx, id, pageID)
	if err != nil {
		return PageDetail{}, err
	}
	sum, err := report.SummarizePage(s.catalog, *p, report.DefaultTop)
	if err != nil {
		return PageDetail{}, err
	}
	return PageDetail{Page: *p, Summary: sum, Rows: report.PageRows(s.catalog, *p)}, nil
}

// PageScore returns the concept breakdown of a page.
func (s *Service) PageScore(ctx context.Context, id string, pageID int) (report.PageSummary, error) {
	_, p, err := s.page(ctx, id, pageID)
	if err != nil {
		return report.PageSummary{}, err
	}
	return report.SummarizePage(s.catalog, *p, report.DefaultTop)
}

// PageRecommendations returns every ranked recommendation for a page.
func (s *Service) PageRecommendations(ctx context.Context, id string, pageID int) ([]recommend.Recommendation, error) {
	_, p, err := s.page(ctx, id, pageID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.StatusComplete {
		return []recommend.Recommendation{}, nil
	}
	return recommend.Rank(s.catalog.Scope(catalog.ScopePage), p.Ratings, p.Intent)
}

// DomainScore returns the site-wide summary of a batch.
func (s *Service) DomainScore(ctx context.Context, id string) (DomainDetail, error) {
	b, err := s.Batch(ctx, id)
	if err != nil {
		return DomainDetail{}, err
	}
	sum, err := report.SummarizeDomain(s.catalog, b)
	if err != nil {
		return DomainDetail{}, err
	}
	return DomainDetail{Summary: sum, Rows: report.DomainRows(s.catalog, b.Domain)}, nil
}

// DomainRecommendations returns every ranked recommendation for the domain.
func (s *Service) DomainRecommendations(ctx context.Context, id string) ([]recommend.Recommendation, error) {
	d, err := s.DomainScore(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.Summary.Recommendations, nil
}

// ManualReview lists the manual-check items of a batch.
func (s *Service) ManualReview(ctx context.Context, id string) ([]review.Item, error) {
	b, err := s.Batch(ctx, id)
	if err != nil {
		return nil, err
	}
	items := review.Items(s.catalog, b.Pages, b.Domain)
	metrics.UpdatePendingReviews(review.Pending(items))
	return items, nil
}

// Summary returns the executive summary of a batch.
func (s *Service) Summary(ctx context.Context, id string) (report.Executive, error) {
	b, err := s.Batch(ctx, id)
	if err != nil {
		return report.Executive{}, err
	}
	return report.Summarize(s.catalog, b, report.DefaultTop, s.now())
}

// checkRating validates a human rating for a signal of the given scope.
func (s *Service) checkRating(scope catalog.Scope, signalID string, r model.Rating) error {
	if _, err := s.catalog.Scope(scope).Signal(signalID); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if err := (model.Ratings{signalID: r}).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

// SetPageRating records a human rating on an analyzed page.
func (s *Service) SetPageRating(ctx context.Context, id string, pageID int, signalID string, r model.Rating) (report.PageSummary, error) {
	if err := s.checkRating(catalog.ScopePage, signalID, r); err != nil {
		return report.PageSummary{}, err
	}
	err := s.store.Update(ctx, id, func(b *model.Batch) error {
		p, err := b.Page(pageID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		if p.Status != model.StatusComplete {
			return fmt.Errorf("%w: page %d is %s", ErrBadRequest, pageID, p.Status)
		}
		if p.Ratings == nil {
			p.Ratings = model.Ratings{}
		}
		p.Ratings[signalID] = r
		p.UpdatedAt = s.now()
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return report.PageSummary{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err != nil {
		return report.PageSummary{}, err
	}
	s.logger.Info(ctx, "page rating set",
		logger.String("batch_id", id),
		logger.Int("page_id", pageID),
		logger.String("signal", signalID),
		logger.Int("rating", int(r)),
	)
	return s.PageScore(ctx, id, pageID)
}

// SetDomainRating records a human override for a site-wide signal.
func (s *Service) SetDomainRating(ctx context.Context, id, signalID string, r model.Rating) (report.DomainSummary, error) {
	if err := s.checkRating(catalog.ScopeDomain, signalID, r); err != nil {
		return report.DomainSummary{}, err
	}
	err := s.store.Update(ctx, id, func(b *model.Batch) error {
		if b.Domain.Overrides == nil {
			b.Domain.Overrides = model.Ratings{}
		}
		b.Domain.Overrides[signalID] = r
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return report.DomainSummary{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err != nil {
		return report.DomainSummary{}, err
	}
	s.logger.Info(ctx, "domain rating set",
		logger.String("batch_id", id),
		logger.String("signal", signalID),
		logger.Int("rating", int(r)),
	)
	d, err := s.DomainScore(ctx, id)
	return d.Summary, err
}

// Score scores ratings for intent against the whole catalog without
// touching any batch.
func (s *Service) Score(ctx context.Context, intent model.Intent, ratings model.Ratings) (ScoreResult, error) {
	b, err := scoring.Aggregate(s.catalog, ratings, intent)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	recs, err := recommend.Rank(s.catalog, ratings, intent)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return ScoreResult{Intent: intent, Scores: b, Label: b.Label(), Recommendations: recs}, nil
}

// Classify relays a single classification, using apiKey when given.
func (s *Service) Classify(ctx context.Context, url, apiKey string) (anthropic.Result, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return anthropic.Result{}, fmt.Errorf("%w: missing url", ErrBadRequest)
	}
	return s.classifier.ClassifyWithKey(ctx, url, apiKey)
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	st := Stats{
		Started:        started,
		QueueLength:    s.queue.Len(ctx),
		QueueCapacity:  s.queue.Capacity(),
		Pages:          map[model.Status]int{},
		CatalogVersion: s.catalog.Version(),
		Signals:        s.catalog.Len(),
	}
	list, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	st.Batches = len(list)
	for _, b := range list {
		for status, n := range b.Counts {
			st.Pages[status] += n
		}
	}
	return st, nil
}
