package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"shiftinsight.com/shiftinsight/loader"
)

type metrics struct {
	loadsTotal       *prometheus.CounterVec
	rowsInserted     prometheus.Counter
	rowsSkipped      *prometheus.CounterVec
	mismatchTotal    prometheus.Counter
	loadDuration     prometheus.Histogram
	newDimensionRows *prometheus.CounterVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		loadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftinsight",
			Name:      "loads_total",
			Help:      "Total number of spreadsheet loads by final status.",
		}, []string{"status"}),
		rowsInserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "shiftinsight",
			Name:      "rows_inserted_total",
			Help:      "Total number of fact rows inserted.",
		}),
		rowsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftinsight",
			Name:      "rows_skipped_total",
			Help:      "Total number of spreadsheet rows skipped, by reason.",
		}, []string{"reason"}),
		mismatchTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "shiftinsight",
			Name:      "reconciliation_mismatch_total",
			Help:      "Total number of loads whose stored client net differs from the sheet.",
		}),
		loadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shiftinsight",
			Name:      "load_duration_seconds",
			Help:      "Wall time of a spreadsheet load.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		newDimensionRows: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftinsight",
			Name:      "dimension_rows_created_total",
			Help:      "Total number of dimension rows created, by dimension.",
		}, []string{"dimension"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

// Record observes one finished load. summary is nil when err is set.
func Record(summary *loader.Summary, duration time.Duration, err error) {
	m := getMetrics()
	m.loadDuration.Observe(duration.Seconds())

	if err != nil || summary == nil {
		m.loadsTotal.WithLabelValues(loader.StatusError).Inc()
		return
	}

	m.loadsTotal.WithLabelValues(loader.StatusComplete).Inc()
	m.rowsInserted.Add(float64(summary.Inserted))
	for reason, n := range summary.SkipCounts() {
		m.rowsSkipped.WithLabelValues(reason).Add(float64(n))
	}
	if !summary.Verification.Match {
		m.mismatchTotal.Inc()
	}

	created := summary.NewDimensions
	m.newDimensionRows.WithLabelValues("employees").Add(float64(created.Employees))
	m.newDimensionRows.WithLabelValues("clients").Add(float64(created.Clients))
	m.newDimensionRows.WithLabelValues("jobs").Add(float64(created.Jobs))
	m.newDimensionRows.WithLabelValues("shifts").Add(float64(created.Shifts))
	m.newDimensionRows.WithLabelValues("dates").Add(float64(created.Dates))
}
