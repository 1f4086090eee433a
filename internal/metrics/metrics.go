package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covidpipe_fetch_bytes_total",
			Help: "Total bytes downloaded per source",
		},
		[]string{"source"},
	)

	RowsMergedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covidpipe_rows_merged_total",
			Help: "Total time series rows merged per measure",
		},
		[]string{"measure"},
	)

	RowsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covidpipe_rows_dropped_total",
			Help: "Total source rows dropped for regions outside the skeleton",
		},
		[]string{"measure"},
	)

	RowsResolvedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "covidpipe_rows_resolved_total",
			Help: "Total line list rows with catalog codes resolved",
		},
	)

	RowsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covidpipe_rows_written_total",
			Help: "Total rows written per output file",
		},
		[]string{"output"},
	)
)

// WriteFile dumps every registered metric to path in the Prometheus text
// format, for collection by the node exporter's textfile module.
func WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
