package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vibingbhudha77/vibex/pkg/metrics"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When a manager is created against it", func() {
			m := metrics.NewManager(
				metrics.WithPrometheusRegistry(reg),
				metrics.WithNamespace("test"),
				metrics.WithSubsystem("engine"),
			)

			Convey("Then construction registers all metric families", func() {
				So(m, ShouldNotBeNil)
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When two managers share one registry", func() {
			Convey("Then the duplicate registration panics", func() {
				So(func() {
					metrics.NewManager(metrics.WithPrometheusRegistry(reg))
					metrics.NewManager(metrics.WithPrometheusRegistry(reg))
				}, ShouldPanic)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then every helper records without panicking", func() {
			So(func() {
				metrics.RecordJoin("ok")
				metrics.RecordJoin("conflict")
				metrics.RecordLeave("ok")
				metrics.RecordVouchApplied()
				metrics.RecordVouchRejected("duplicate")
				metrics.RecordRatingUpdate()
				metrics.RecordSessionClosed("auto_close")
				metrics.RecordCommitConflict("session")
				metrics.RecordCommitRetry()
				metrics.UpdateTotalSessions(3)
				metrics.UpdateQueueSize(1)
				metrics.UpdateQueueCapacity(100)
				metrics.UpdateQueueUtilization(0.01)
				metrics.UpdateWorkerCount(4)
				metrics.RecordNotificationEnqueued()
				metrics.RecordNotificationDropped()
				metrics.RecordNotificationDispatched()
				metrics.RecordNotificationFailure()
				metrics.RecordDispatchLatency(1.5)
				metrics.RecordHTTPRequest("join", "POST", "200")
				metrics.RecordHTTPRequestDuration("join", "POST", "200", 2.0)
			}, ShouldNotPanic)
		})

		Convey("Then the served registry gathers cleanly", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
