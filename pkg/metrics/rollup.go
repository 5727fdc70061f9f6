package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RollupMetrics records recompute job and batch-page outcomes.
type RollupMetrics struct {
	jobDuration  *prometheus.HistogramVec
	jobSuccess   *prometheus.CounterVec
	jobFailure   *prometheus.CounterVec
	pageDuration prometheus.Histogram
	processed    prometheus.Counter
	errored      prometheus.Counter
}

// NewRollupMetrics registers the rollup metrics on the provided registerer.
func NewRollupMetrics(reg prometheus.Registerer) *RollupMetrics {
	if reg == nil {
		return &RollupMetrics{}
	}
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rollup_job_duration_seconds",
		Help:    "Duration of rollup jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	jobSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollup_job_success",
		Help: "Successful rollup job executions.",
	}, []string{"job"})
	jobFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollup_job_failure",
		Help: "Failed rollup job executions.",
	}, []string{"job"})
	pageDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rollup_batch_page_duration_seconds",
		Help:    "Duration of one batch recompute page in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	processed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rollup_products_processed_total",
		Help: "Products recomputed across all batch pages.",
	})
	errored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rollup_products_errored_total",
		Help: "Products whose recompute failed across all batch pages.",
	})
	reg.MustRegister(jobDuration, jobSuccess, jobFailure, pageDuration, processed, errored)
	return &RollupMetrics{
		jobDuration:  jobDuration,
		jobSuccess:   jobSuccess,
		jobFailure:   jobFailure,
		pageDuration: pageDuration,
		processed:    processed,
		errored:      errored,
	}
}

// ObserveJobDuration records the duration for the named job.
func (m *RollupMetrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil || m.jobDuration == nil {
		return
	}
	m.jobDuration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncJobSuccess increments the success counter for the named job.
func (m *RollupMetrics) IncJobSuccess(job string) {
	if m == nil || m.jobSuccess == nil {
		return
	}
	m.jobSuccess.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncJobFailure increments the failure counter for the named job.
func (m *RollupMetrics) IncJobFailure(job string) {
	if m == nil || m.jobFailure == nil {
		return
	}
	m.jobFailure.WithLabelValues(normalizeLabel(job)).Inc()
}

// ObservePage records one batch page: its duration and per-product outcomes.
func (m *RollupMetrics) ObservePage(duration time.Duration, processed, errored int) {
	if m == nil || m.pageDuration == nil {
		return
	}
	m.pageDuration.Observe(duration.Seconds())
	m.processed.Add(float64(processed))
	m.errored.Add(float64(errored))
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
