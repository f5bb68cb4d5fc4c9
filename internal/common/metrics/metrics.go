// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	ScanVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safety_scan_verdicts_total",
			Help: "Restaurant scan verdicts by risk level",
		},
		[]string{"risk_level"},
	)

	MenuCacheDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_cache_decisions_total",
			Help: "Menu cache decisions by outcome",
		},
		[]string{"decision"},
	)

	MenuExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_extractions_total",
			Help: "Menu extraction attempts by result",
		},
		[]string{"result"},
	)

	QuotaOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_quota_outcomes_total",
			Help: "Scrape quota ledger outcomes",
		},
		[]string{"outcome"},
	)
)

// Quota outcome labels.
const (
	QuotaDebited      = "debited"
	QuotaExhausted    = "exhausted"
	QuotaCredited     = "credited"
	QuotaCreditFailed = "credit_failed"
)
