package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then every metric is registered on it", func() {
				So(manager, ShouldNotBeNil)
				manager.catalogSongs.Set(1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				So(families[0].GetName(), ShouldStartWith, "replaytune_recommender_")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.recommendationsServed.Add(2)

			Convey("Then names and labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_recommendations_served_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
						So(f.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 2)
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording pipeline metrics", func() {
			before := testutil.ToFloat64(globalManager.profilesComputed.WithLabelValues("ok"))
			RecordProfile("ok", 0.4)
			RecordProfile("player_not_found", 0.1)
			served := testutil.ToFloat64(globalManager.recommendationsServed)
			RecordRecommendations(3, 1.2)

			Convey("Then counters move by the recorded amounts", func() {
				So(testutil.ToFloat64(globalManager.profilesComputed.WithLabelValues("ok")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.recommendationsServed), ShouldEqual, served+3)
			})
		})

		Convey("When recording a catalog load", func() {
			RecordCatalogLoad("ok", 12, 2)
			RecordCatalogLoad("error", 0, 0)

			Convey("Then only successful loads update the gauges", func() {
				So(testutil.ToFloat64(globalManager.catalogSongs), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.catalogSkipped), ShouldEqual, 2)
			})
		})

		Convey("When recording webhook and queue metrics", func() {
			So(func() {
				RecordWebhookSubmission("queued")
				RecordWebhookDelivery("delivered", 12)
				UpdateBreakerState(BreakerOpen)
				UpdateQueueSize(3)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.3)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				AddWorkerActive(1)
				AddWorkerActive(-1)
				RecordWorkerProcessingLatency(5)
				RecordWorkerError()
				RecordErrorByComponent("webhook", "timeout")
				RecordHTTPRequest("/recommend", "POST", "200")
				RecordHTTPRequestDuration("/recommend", "POST", "200", 3)
				UpdateSystemMetrics()
			}, ShouldNotPanic)

			Convey("Then gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.breakerState), ShouldEqual, BreakerOpen)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the metrics handler", t, func() {
		RecordCatalogLoad("ok", 7, 0)
		rec := httptest.NewRecorder()
		Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		Convey("Then it exposes the custom registry", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(strings.Contains(rec.Body.String(), "replaytune_recommender_catalog_songs 7"), ShouldBeTrue)
		})
	})
}
