// Package metrics exports the outcome of a run in the Prometheus text format.
//
// A run-once job has no scrape endpoint, so the registry is written to a
// file for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/raoulx24/feed-archiver/internal/report"
)

const namespace = "feed_archiver"

// Collector holds the metrics of one run.
type Collector struct {
	registry *prometheus.Registry

	archived       prometheus.Counter
	skipped        prometheus.Counter
	failed         prometheus.Counter
	purged         prometheus.Counter
	purgeFailures  prometheus.Counter
	lastRunSuccess prometheus.Gauge
	lastRunTime    prometheus.Gauge
	duration       prometheus.Gauge
}

// NewCollector registers the run metrics on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		archived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_archived_total",
			Help:      "Feed files compressed, verified and removed from the feed directory.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "Expected feed files that were absent at compression time.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "Feed files whose compression or removal failed.",
		}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archives_purged_total",
			Help:      "Archive artifacts deleted for exceeding the retention age.",
		}),
		purgeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purge_failures_total",
			Help:      "Expired archive artifacts that could not be deleted.",
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run completed, 0 if it aborted.",
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the last run.",
		}),
	}

	c.registry.MustRegister(
		c.archived, c.skipped, c.failed,
		c.purged, c.purgeFailures,
		c.lastRunSuccess, c.lastRunTime, c.duration,
	)
	return c
}

// Observe records the results of the archive and purge stages.
func (c *Collector) Observe(reports ...report.Report) {
	for _, rep := range reports {
		for _, res := range rep.Results {
			switch {
			case res.Status == report.StatusArchived:
				c.archived.Inc()
			case res.Status == report.StatusSkipped:
				c.skipped.Inc()
			case res.Status == report.StatusPurged:
				c.purged.Inc()
			case res.Status == report.StatusFailed && res.Stage == report.StagePurge:
				c.purgeFailures.Inc()
			case res.Status == report.StatusFailed:
				c.failed.Inc()
			}
		}
	}
}

// Finish records the overall outcome.
func (c *Collector) Finish(success bool, started, finished time.Time) {
	if success {
		c.lastRunSuccess.Set(1)
	} else {
		c.lastRunSuccess.Set(0)
	}
	c.lastRunTime.Set(float64(finished.Unix()))
	c.duration.Set(finished.Sub(started).Seconds())
}

// WriteTextfile writes the registry atomically to path.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
