package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/eeat/internal/adapters/mq/queue"
	"github.com/okian/eeat/internal/adapters/mq/worker"
	"github.com/okian/eeat/internal/adapters/repository"
	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/ingest"
	"github.com/okian/eeat/internal/domain/model"
	logging "github.com/okian/eeat/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// mockClassifier returns canned verdicts per URL.
type mockClassifier struct {
	mu      sync.Mutex
	results map[string]ingest.Classification
	errors  map[string]error
	block   bool
	calls   []string
	started chan string
}

func newMockClassifier() *mockClassifier {
	return &mockClassifier{
		results: make(map[string]ingest.Classification),
		errors:  make(map[string]error),
		started: make(chan string, 16),
	}
}

func (m *mockClassifier) Analyze(ctx context.Context, url string) (ingest.Classification, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	block := m.block
	res, hasRes := m.results[url]
	err := m.errors[url]
	m.mu.Unlock()

	m.started <- url
	if block {
		<-ctx.Done()
		return ingest.Classification{}, ctx.Err()
	}
	if err != nil {
		return ingest.Classification{}, err
	}
	if !hasRes {
		res = verdict(model.IntentInformational, nil)
	}
	return res, nil
}

func (m *mockClassifier) setError(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[url] = err
}

func (m *mockClassifier) setResult(url string, c ingest.Classification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[url] = c
}

func (m *mockClassifier) setBlocking() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = true
}

func (m *mockClassifier) callOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func verdict(intent model.Intent, domain map[string]model.Rating) ingest.Classification {
	if domain == nil {
		domain = map[string]model.Rating{}
	}
	return ingest.Classification{
		Intent: intent,
		YMYL:   model.YMYLNone,
		Groups: map[string]map[string]model.Rating{
			ingest.GroupDomain:  domain,
			ingest.GroupContent: {"publishDate": 2},
			ingest.GroupAuthor:  {"profile": 1},
		},
	}
}

var urls = []string{
	"https://example.com/a",
	"https://example.com/b",
	"https://example.com/c",
}

// flakyStore fails the next n updates.
type flakyStore struct {
	*repository.MemoryStore
	mu sync.Mutex
	n  int
}

func (f *flakyStore) Update(ctx context.Context, id string, fn func(*model.Batch) error) error {
	f.mu.Lock()
	if f.n > 0 {
		f.n--
		f.mu.Unlock()
		return errors.New("disk full")
	}
	f.mu.Unlock()
	return f.MemoryStore.Update(ctx, id, fn)
}

func waitDone(store *repository.MemoryStore, id string) *model.Batch {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		b, err := store.Get(context.Background(), id)
		if err == nil && b.Done() {
			return b
		}
		time.Sleep(5 * time.Millisecond)
	}
	b, _ := store.Get(context.Background(), id)
	return b
}

func submit(ctx context.Context, store *repository.MemoryStore, q *queue.InMemoryQueue, id string) {
	b := model.NewBatch(id, "example.com", urls, time.Now())
	convey.So(store.Create(ctx, b), convey.ShouldBeNil)
	convey.So(q.Enqueue(ctx, queue.Job{BatchID: id, SubmittedAt: time.Now()}), convey.ShouldBeTrue)
}

func TestRunner(t *testing.T) {
	convey.Convey("Given a runner over a memory store", t, func() {
		_ = logging.Init()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := repository.NewMemoryStore()
		q := queue.NewInMemoryQueue()
		cls := newMockClassifier()
		cat := catalog.Default()

		convey.Convey("When creating a runner with custom options", func() {
			r := worker.NewRunner(q, cls, store, cat, worker.WithName("test-runner"))

			convey.Convey("Then it should be created successfully", func() {
				convey.So(r, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a batch is processed", func() {
			cls.setResult(urls[0], verdict(model.IntentCommercial, map[string]model.Rating{"ssl": 1}))
			cls.setResult(urls[2], verdict(model.IntentInformational, map[string]model.Rating{"ssl": 2, "phone": 1}))
			cls.setError(urls[1], errors.New("upstream 500"))

			r := worker.NewRunner(q, cls, store, cat)
			go r.Run(ctx)
			submit(ctx, store, q, "b1")
			b := waitDone(store, "b1")

			convey.Convey("Then pages are analyzed in order", func() {
				convey.So(cls.callOrder(), convey.ShouldResemble, urls)
			})

			convey.Convey("Then a failed page does not abort the batch", func() {
				convey.So(b.Done(), convey.ShouldBeTrue)
				convey.So(b.Pages[0].Status, convey.ShouldEqual, model.StatusComplete)
				convey.So(b.Pages[1].Status, convey.ShouldEqual, model.StatusError)
				convey.So(b.Pages[1].Error, convey.ShouldEqual, "upstream 500")
				convey.So(b.Pages[2].Status, convey.ShouldEqual, model.StatusComplete)
			})

			convey.Convey("Then the verdict is stored on the page", func() {
				convey.So(b.Pages[0].Intent, convey.ShouldEqual, model.IntentCommercial)
				convey.So(b.Pages[0].Ratings["c5"], convey.ShouldEqual, model.RatingFull)
				convey.So(b.Pages[0].Ratings["c2"], convey.ShouldEqual, model.RatingUnscored)
			})

			convey.Convey("Then brand ratings are max-merged into the domain", func() {
				convey.So(b.Domain.Contributors, convey.ShouldEqual, 2)
				convey.So(b.Domain.Observed["d5"], convey.ShouldEqual, model.RatingFull)
				convey.So(b.Domain.Observed["d2"], convey.ShouldEqual, model.RatingPartial)
			})

			convey.So(r.Shutdown(context.Background()), convey.ShouldBeNil)
		})

		convey.Convey("When a verdict carries an invalid rating", func() {
			bad := verdict(model.IntentInformational, nil)
			bad.Groups[ingest.GroupContent]["publishDate"] = 5
			cls.setResult(urls[0], bad)

			r := worker.NewRunner(q, cls, store, cat)
			go r.Run(ctx)
			submit(ctx, store, q, "b2")
			b := waitDone(store, "b2")

			convey.Convey("Then that page is marked error and not merged", func() {
				convey.So(b.Pages[0].Status, convey.ShouldEqual, model.StatusError)
				convey.So(b.Pages[0].Error, convey.ShouldContainSubstring, "c5")
				convey.So(b.Domain.Contributors, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the classifier exceeds the call timeout", func() {
			cls.setBlocking()
			r := worker.NewRunner(q, cls, store, cat, worker.WithClassifyTimeout(20*time.Millisecond))
			go r.Run(ctx)
			submit(ctx, store, q, "b3")
			b := waitDone(store, "b3")

			convey.Convey("Then each page fails on its own deadline", func() {
				convey.So(b.Done(), convey.ShouldBeTrue)
				for _, p := range b.Pages {
					convey.So(p.Status, convey.ShouldEqual, model.StatusError)
					convey.So(p.Error, convey.ShouldContainSubstring, "deadline exceeded")
				}
			})
		})

		convey.Convey("When the runner is rate limited", func() {
			r := worker.NewRunner(q, cls, store, cat, worker.WithRateLimit(20))
			go r.Run(ctx)
			start := time.Now()
			submit(ctx, store, q, "b4")
			b := waitDone(store, "b4")

			convey.Convey("Then calls are paced", func() {
				convey.So(b.Done(), convey.ShouldBeTrue)
				convey.So(time.Since(start), convey.ShouldBeGreaterThanOrEqualTo, 90*time.Millisecond)
			})
		})

		convey.Convey("When shutdown interrupts a batch", func() {
			cls.setBlocking()
			r := worker.NewRunner(q, cls, store, cat)
			go r.Run(ctx)
			submit(ctx, store, q, "b5")

			select {
			case <-cls.started:
			case <-time.After(time.Second):
			}
			shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
			defer stop()
			err := r.Shutdown(shutdownCtx)

			convey.Convey("Then unfinished pages are marked as shut down", func() {
				convey.So(err, convey.ShouldBeNil)
				b, getErr := store.Get(context.Background(), "b5")
				convey.So(getErr, convey.ShouldBeNil)
				convey.So(b.Done(), convey.ShouldBeTrue)
				for _, p := range b.Pages {
					convey.So(p.Status, convey.ShouldEqual, model.StatusError)
					convey.So(p.Error, convey.ShouldEqual, worker.ShutdownReason)
				}
			})

			convey.Convey("Then a second shutdown is harmless", func() {
				convey.So(r.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the store refuses a page update", func() {
			flaky := &flakyStore{MemoryStore: store, n: 1}
			r := worker.NewRunner(q, cls, flaky, cat)
			go r.Run(ctx)
			submit(ctx, store, q, "b7")
			b := waitDone(store, "b7")

			convey.Convey("Then the rest of the batch is marked error", func() {
				convey.So(b.Done(), convey.ShouldBeTrue)
				for _, p := range b.Pages {
					convey.So(p.Status, convey.ShouldEqual, model.StatusError)
					convey.So(p.Error, convey.ShouldContainSubstring, "disk full")
				}
				convey.So(cls.callOrder(), convey.ShouldBeEmpty)
			})

			convey.So(r.Shutdown(context.Background()), convey.ShouldBeNil)
		})

		convey.Convey("When a job names an unknown batch", func() {
			r := worker.NewRunner(q, cls, store, cat)
			go r.Run(ctx)
			convey.So(q.Enqueue(ctx, queue.Job{BatchID: "ghost"}), convey.ShouldBeTrue)
			submit(ctx, store, q, "b6")

			convey.Convey("Then later batches still run", func() {
				convey.So(waitDone(store, "b6").Done(), convey.ShouldBeTrue)
			})
		})
	})
}
