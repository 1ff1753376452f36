package extract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagecarve_pages_processed_total",
			Help: "Total number of pages extracted",
		},
	)

	artifactsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagecarve_artifacts_total",
			Help: "Total number of image artifacts produced",
		},
		[]string{"kind"}, // kind: page, raster, vector
	)

	groupsFilteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagecarve_groups_filtered_total",
			Help: "Total number of shape groups discarded as decorative noise",
		},
	)

	pageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pagecarve_page_duration_seconds",
			Help:    "Per-page extraction duration in seconds",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)
