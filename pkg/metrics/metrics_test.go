package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithClassifyBuckets([]float64{100, 1000}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.batchesSubmitted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_batches_submitted_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When registering the same manager twice", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the duplicate registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})

		Convey("When empty option values are given", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "eeat")
				So(m.subsystem, ShouldEqual, "scorer")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording batch and page events", func() {
			before := value(globalManager.batchesSubmitted)
			RecordBatchSubmitted()
			RecordPageProcessed("complete")
			RecordPageProcessed("complete")
			ObservePageScore(72)

			Convey("Then the counters move", func() {
				So(value(globalManager.batchesSubmitted), ShouldEqual, before+1)
				So(value(globalManager.pagesProcessed.WithLabelValues("complete")), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(3)
			UpdateQueueCapacity(10)
			UpdatePendingReviews(7)

			Convey("Then the gauges hold the last value", func() {
				So(value(globalManager.queueSize), ShouldEqual, 3)
				So(value(globalManager.queueCapacity), ShouldEqual, 10)
				So(value(globalManager.pendingReviews), ShouldEqual, 7)
			})
		})

		Convey("When recording the remaining helpers", func() {
			So(func() {
				RecordHTTPRequest("/batches", "POST", "202")
				RecordHTTPRequestDuration("/batches", "POST", "202", 1.5)
				RecordClassifyLatency(1200)
				RecordClassifyError("timeout")
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordStoreLatency("update", 0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry exposes the service metrics", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var names []string
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(strings.Join(names, ","), ShouldContainSubstring, "eeat_scorer_batches_submitted_total")
		})
	})
}

// value reads the current value of a counter or gauge.
func value(m prometheus.Metric) float64 {
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		return -1
	}
	if c := out.GetCounter(); c != nil {
		return c.GetValue()
	}
	return out.GetGauge().GetValue()
}
