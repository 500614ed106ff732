// Package metrics exposes the pipeline's Prometheus counters/gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsLoaded counts records read from a source, per topic.
	RecordsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repliq_records_loaded_total",
		Help: "Records read from a source adapter.",
	}, []string{"topic"})

	// RecordsSaved counts records written to a sink, per topic and sink.
	RecordsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repliq_records_saved_total",
		Help: "Records written to a sink after dedup.",
	}, []string{"topic", "sink"})

	// RecordsDeduplicated counts records dropped by the dedup filter as
	// true duplicates, per topic.
	RecordsDeduplicated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repliq_records_deduplicated_total",
		Help: "Records dropped by the dedup filter as duplicates.",
	}, []string{"topic"})

	// QueueDepth reports the current size of a topic's bounded queue.
	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "repliq_queue_depth",
		Help: "Current number of buffered records in a topic's bounded queue.",
	}, []string{"topic", "lane"})

	// RetryAttempts counts retry attempts made by the retry loop, per
	// topic.
	RetryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repliq_retry_attempts_total",
		Help: "Retry attempts made running an orchestrator action.",
	}, []string{"topic"})
)
