// Package metrics defines and registers all custom Prometheus metrics for the
// time clock API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry at init time
// via promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "timeclock"

// StampsRecordedTotal counts successfully persisted stamps.
// Label:
//   - field: "clock_in", "lunch_out", "end_lunch", or "clock_out"
var StampsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stamps_recorded_total",
		Help:      "Total number of stamps recorded, by field.",
	},
	[]string{"field"},
)

// StampsDuplicateTotal counts stamp attempts that resolved as no-ops because
// the field already held a value (double clicks, multi-device replays).
var StampsDuplicateTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stamps_duplicate_total",
		Help:      "Total number of stamp attempts ignored as duplicates, by field.",
	},
	[]string{"field"},
)

// StampDuration measures a stamp operation end-to-end, re-fetch to persist.
var StampDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stamp_duration_seconds",
		Help:      "Duration of stamp processing from re-fetch to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"field"},
)

// TimeLogsCreatedTotal counts lazily created day records.
var TimeLogsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timelogs_created_total",
		Help:      "Total number of day records created on first touch.",
	},
)

// ReportsRunTotal counts manager range reports.
var ReportsRunTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_run_total",
		Help:      "Total number of range reports generated.",
	},
)

// ExportsGeneratedTotal counts export downloads.
// Label:
//   - format: "csv" or "xlsx"
var ExportsGeneratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_generated_total",
		Help:      "Total number of export files generated, by format.",
	},
	[]string{"format"},
)

// StoreWipesTotal counts irreversible bulk wipes of the record store.
var StoreWipesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_wipes_total",
		Help:      "Total number of scope-wide record store wipes.",
	},
)
