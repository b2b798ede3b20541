package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/eeat/internal/adapters/repository"
	service "github.com/okian/eeat/internal/app"
	"github.com/okian/eeat/internal/domain/ingest"
	"github.com/okian/eeat/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService_ResumeFromSQLite(t *testing.T) {
	Convey("Given a database holding a batch interrupted mid-analysis", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "eeat.db")

		st, err := repository.NewSQLiteStore(path)
		So(err, ShouldBeNil)
		b := model.NewBatch("left-over", "example.com",
			[]string{"https://example.com/a", "https://example.com/b"}, time.Now())
		b.Pages[0].Status = model.StatusAnalyzing
		So(st.Create(ctx, b), ShouldBeNil)

		Convey("When a service starts on it", func() {
			svc := service.New(service.WithStore(st), service.WithClassifier(&fakeClassifier{}))
			So(svc.Start(ctx), ShouldBeNil)
			got := waitDone(ctx, svc, "left-over")

			Convey("Then the batch is picked up and finished", func() {
				So(got.Done(), ShouldBeTrue)
				So(got.Counts()[model.StatusComplete], ShouldEqual, 2)
				So(got.Domain.Contributors, ShouldEqual, 2)
			})

			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then the results survive a reopen", func() {
				again, err := repository.NewSQLiteStore(path)
				So(err, ShouldBeNil)
				defer again.Close()
				saved, err := again.Get(ctx, "left-over")
				So(err, ShouldBeNil)
				So(saved.Done(), ShouldBeTrue)
			})
		})
	})
}

// gateClassifier holds every call until the gate closes.
type gateClassifier struct {
	*fakeClassifier
	gate chan struct{}
}

func (g *gateClassifier) Analyze(ctx context.Context, url string) (ingest.Classification, error) {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return ingest.Classification{}, ctx.Err()
	}
	return g.fakeClassifier.Analyze(ctx, url)
}

func TestService_ResumeBeyondQueueSize(t *testing.T) {
	Convey("Given more unfinished batches than the queue holds", t, func() {
		ctx := context.Background()
		st := repository.NewMemoryStore()
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 5; i++ {
			b := model.NewBatch(fmt.Sprintf("left-%d", i), "example.com",
				[]string{fmt.Sprintf("https://example.com/%d", i)}, base.Add(time.Duration(i)*time.Minute))
			So(st.Create(ctx, b), ShouldBeNil)
		}
		gate := make(chan struct{})
		svc := service.New(
			service.WithStore(st),
			service.WithClassifier(&gateClassifier{fakeClassifier: &fakeClassifier{}, gate: gate}),
			service.WithQueueSize(1),
		)

		Convey("When the service starts", func() {
			err := svc.Start(ctx)

			Convey("Then startup succeeds and the overflow stays pending", func() {
				So(err, ShouldBeNil)
				last, err := svc.Batch(ctx, "left-4")
				So(err, ShouldBeNil)
				So(last.Counts()[model.StatusPending], ShouldEqual, 1)
				So(last.Done(), ShouldBeFalse)
			})

			Convey("Then the oldest batch still gets scored", func() {
				close(gate)
				got := waitDone(ctx, svc, "left-0")
				So(got.Counts()[model.StatusComplete], ShouldEqual, 1)
			})

			Reset(func() {
				select {
				case <-gate:
				default:
					close(gate)
				}
				_ = svc.Stop(ctx)
			})
		})
	})
}
