// Package worker runs queued batches through the classifier one page at a
// time and records every page state transition in the batch store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/eeat/internal/adapters/mq/queue"
	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/ingest"
	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/internal/domain/scoring"
	"github.com/okian/eeat/pkg/logger"
	"github.com/okian/eeat/pkg/metrics"
)

// ShutdownReason is recorded on pages left unfinished by a shutdown.
const ShutdownReason = "shutdown"

// Classifier produces a verdict for one URL.
type Classifier interface {
	Analyze(ctx context.Context, url string) (ingest.Classification, error)
}

// Store is the part of the batch store the runner writes to.
type Store interface {
	Get(ctx context.Context, id string) (*model.Batch, error)
	Update(ctx context.Context, id string, fn func(*model.Batch) error) error
}

// Queue defines how the runner receives jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes batches until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker. Pages not yet finished are marked error.
	Shutdown(ctx context.Context) error
}

// Runner is a bounded sequential task runner: one batch at a time, one page
// at a time, in submission order.
type Runner struct {
	queue      Queue
	classifier Classifier
	store      Store
	catalog    *catalog.Catalog
	name       string

	limiter *rate.Limiter
	timeout time.Duration
	now     func() time.Time

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewRunner creates a runner with configuration options.
func NewRunner(q Queue, cls Classifier, st Store, cat *catalog.Catalog, opts ...Option) *Runner {
	r := &Runner{
		queue:      q,
		classifier: cls,
		store:      st,
		catalog:    cat,
		name:       "runner",
		now:        time.Now,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.name != "runner" {
		r.logger = r.logger.Named(r.name)
	}
	return r
}

// Run starts the runner loop.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	// calls in flight are canceled as soon as shutdown is requested
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.shutdown:
			cancel()
		case <-runCtx.Done():
		}
	}()

	jobs := r.queue.Dequeue(runCtx)
	for {
		select {
		case <-runCtx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := r.process(runCtx, job); err != nil {
				r.logger.Error(ctx, "batch processing failed",
					logger.String("batch_id", job.BatchID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown signals the runner to stop and waits for it to finish.
func (r *Runner) Shutdown(ctx context.Context) error {
	select {
	case <-r.shutdown:
	default:
		close(r.shutdown)
	}

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process walks the unfinished pages of a batch in order.
func (r *Runner) process(ctx context.Context, job queue.Job) error {
	b, err := r.store.Get(ctx, job.BatchID)
	if err != nil {
		return fmt.Errorf("loading batch: %w", err)
	}
	r.logger.Info(ctx, "batch started",
		logger.String("batch_id", b.ID),
		logger.Int("pages", len(b.Pages)),
	)

	for _, p := range b.Pages {
		if p.Status.Done() {
			continue
		}
		if ctx.Err() != nil {
			return r.abandon(ctx, b.ID)
		}
		if err := r.page(ctx, b.ID, p.ID, p.URL); err != nil {
			if ctx.Err() != nil {
				return r.abandon(ctx, b.ID)
			}
			return r.fail(ctx, b.ID, err)
		}
	}

	r.logger.Info(ctx, "batch finished", logger.String("batch_id", b.ID))
	return nil
}

// page runs one page through pending -> analyzing -> complete | error.
// A classification failure is recorded on the page and is not returned.
func (r *Runner) page(ctx context.Context, batchID string, pageID int, url string) error {
	fields := []logger.Field{
		logger.String("batch_id", batchID),
		logger.Int("page_id", pageID),
		logger.String("url", url),
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	if err := r.setStatus(ctx, batchID, pageID, model.StatusAnalyzing, ""); err != nil {
		return err
	}
	r.logger.Debug(ctx, "page analyzing", fields...)

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	start := r.now()
	cls, err := r.classifier.Analyze(callCtx, url)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Warn(ctx, "page failed", append(fields, logger.Error(err))...)
		metrics.RecordPageProcessed(string(model.StatusError))
		return r.setStatus(ctx, batchID, pageID, model.StatusError, err.Error())
	}

	var (
		overall int
		invalid error
	)
	err = r.store.Update(context.WithoutCancel(ctx), batchID, func(b *model.Batch) error {
		p, err := b.Page(pageID)
		if err != nil {
			return err
		}
		ingest.Apply(r.catalog, p, cls)
		p.UpdatedAt = r.now()

		score, err := scoring.Aggregate(r.catalog.Scope(catalog.ScopePage), p.Ratings, p.Intent)
		if err != nil {
			p.Status = model.StatusError
			p.Error = err.Error()
			invalid = err
			return nil
		}
		overall = score.Overall

		b.Domain.Observed = scoring.MergeDomain(b.Domain.Observed, p.BrandRatings)
		b.Domain.Contributors++
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording page %d: %w", pageID, err)
	}
	if invalid != nil {
		r.logger.Warn(ctx, "page rejected", append(fields, logger.Error(invalid))...)
		metrics.RecordPageProcessed(string(model.StatusError))
		return nil
	}

	metrics.RecordPageProcessed(string(model.StatusComplete))
	metrics.ObservePageScore(overall)
	r.logger.Info(ctx, "page complete", append(fields,
		logger.Int("overall", overall),
		logger.Duration("took", r.now().Sub(start)),
	)...)
	return nil
}

func (r *Runner) setStatus(ctx context.Context, batchID string, pageID int, status model.Status, msg string) error {
	err := r.store.Update(context.WithoutCancel(ctx), batchID, func(b *model.Batch) error {
		p, err := b.Page(pageID)
		if err != nil {
			return err
		}
		p.Status = status
		p.Error = msg
		p.UpdatedAt = r.now()
		return nil
	})
	if err != nil {
		return fmt.Errorf("setting page %d %s: %w", pageID, status, err)
	}
	return nil
}

// abandon marks every unfinished page of the batch as failed by shutdown.
func (r *Runner) abandon(ctx context.Context, batchID string) error {
	n, err := r.finish(ctx, batchID, ShutdownReason)
	if err != nil {
		return fmt.Errorf("abandoning batch: %w", err)
	}
	r.logger.Warn(context.WithoutCancel(ctx), "batch abandoned",
		logger.String("batch_id", batchID),
		logger.Int("pages", n),
	)
	return errors.Join(ErrStopped, ctx.Err())
}

// fail ends a batch whose page could not be recorded. The remaining pages
// carry cause so the batch still reaches a terminal state.
func (r *Runner) fail(ctx context.Context, batchID string, cause error) error {
	n, err := r.finish(ctx, batchID, cause.Error())
	if err != nil {
		return errors.Join(cause, fmt.Errorf("failing batch: %w", err))
	}
	r.logger.Warn(ctx, "batch failed",
		logger.String("batch_id", batchID),
		logger.Int("pages", n),
		logger.Error(cause),
	)
	return cause
}

// finish marks every unfinished page of the batch as error with reason.
func (r *Runner) finish(ctx context.Context, batchID, reason string) (int, error) {
	n := 0
	err := r.store.Update(context.WithoutCancel(ctx), batchID, func(b *model.Batch) error {
		for i := range b.Pages {
			if b.Pages[i].Status.Done() {
				continue
			}
			b.Pages[i].Status = model.StatusError
			b.Pages[i].Error = reason
			b.Pages[i].UpdatedAt = r.now()
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		metrics.RecordPageProcessed(string(model.StatusError))
	}
	return n, nil
}
