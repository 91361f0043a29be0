// Package metrics provides Prometheus metrics for projecthub.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Archive ingestion metrics
	archiveIngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_archive_ingest_total",
			Help: "Total number of archive ingestions",
		},
		[]string{"status"},
	)

	archiveEntriesDecoded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "projecthub_archive_entries_decoded_total",
			Help: "Total number of archive entries decoded to text",
		},
	)

	archiveIngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "projecthub_archive_ingest_duration_seconds",
			Help:    "Time to download and decode one archive",
			Buckets: prometheus.DefBuckets,
		},
	)

	archiveBytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "projecthub_archive_bytes_downloaded_total",
			Help: "Total archive bytes downloaded from the project service",
		},
	)

	// Preview metrics
	previewSynthesizeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_preview_synthesize_total",
			Help: "Total number of preview documents synthesized",
		},
		[]string{"result"},
	)

	// Export metrics
	materializeRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_materialize_runs_total",
			Help: "Total number of local exports",
		},
		[]string{"status"},
	)

	materializeFilesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "projecthub_materialize_files_written_total",
			Help: "Total number of files written by local exports",
		},
	)

	// Session metrics
	staleSelectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "projecthub_stale_selections_total",
			Help: "Ingestion results discarded because a newer project was selected",
		},
	)
)

// Handler returns the Prometheus metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordIngest records one finished ingestion.
func RecordIngest(status string, duration time.Duration) {
	archiveIngestTotal.WithLabelValues(status).Inc()
	archiveIngestDuration.Observe(duration.Seconds())
}

// RecordEntriesDecoded adds n decoded archive entries.
func RecordEntriesDecoded(n int) {
	archiveEntriesDecoded.Add(float64(n))
}

// RecordDownload adds downloaded archive bytes.
func RecordDownload(bytes int) {
	archiveBytesDownloaded.Add(float64(bytes))
}

// RecordSynthesis records one synthesized preview ("ok", "missing_root", "no_entry").
func RecordSynthesis(result string) {
	previewSynthesizeTotal.WithLabelValues(result).Inc()
}

// RecordMaterialize records one export run.
func RecordMaterialize(status string) {
	materializeRunsTotal.WithLabelValues(status).Inc()
}

// RecordFileWritten records one exported file.
func RecordFileWritten() {
	materializeFilesWritten.Inc()
}

// RecordStaleSelection records a discarded ingestion result.
func RecordStaleSelection() {
	staleSelectionsTotal.Inc()
}
