// Package metrics defines the service's domain counters. They register with the
// default registry, which fiberprometheus serves at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "videohost"

var (
	// VideoUploads counts upload attempts by result (ok, rejected, failed)
	VideoUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "video_uploads_total",
		Help:      "Video upload attempts by result.",
	}, []string{"result"})

	// CascadeDeletes counts completed deletion plans by root entity
	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_deletes_total",
		Help:      "Completed cascading deletes by root entity.",
	}, []string{"entity"})

	// MediaFilesRemoved counts files removed from the media store by deletes
	MediaFilesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_files_removed_total",
		Help:      "Media files removed while deleting videos.",
	})

	// EventPublishFailures counts domain events that could not be published
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publish_failures_total",
		Help:      "Domain events that failed to publish, by event type.",
	}, []string{"event"})
)
