// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LecturesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lecturebot",
		Name:      "lectures_created_total",
		Help:      "Lectures stored, by file type.",
	}, []string{"file_type"})

	LecturesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lecturebot",
		Name:      "lectures_deleted_total",
		Help:      "Lectures deleted by an admin.",
	})

	OrphansRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lecturebot",
		Name:      "orphaned_lectures_removed_total",
		Help:      "Lectures removed by reconciliation because their file was missing.",
	})

	Downloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lecturebot",
		Name:      "downloads_total",
		Help:      "Recorded lecture downloads.",
	})

	UploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lecturebot",
		Name:      "uploads_rejected_total",
		Help:      "Uploads refused at ingestion, by reason.",
	}, []string{"reason"})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
