package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecordsInserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_inserted_total",
			Help: "Total number of records submitted to the store",
		},
		[]string{"status"},
	)

	InsertDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_insert_duration_seconds",
			Help:    "Duration of store insert calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	IngestLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_lines_total",
			Help: "Lines read from the ingestion file",
		},
		[]string{"result"},
	)

	IngestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "File ingestion runs by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(RecordsInserted)
	prometheus.MustRegister(InsertDuration)
	prometheus.MustRegister(IngestLines)
	prometheus.MustRegister(IngestRuns)
}
