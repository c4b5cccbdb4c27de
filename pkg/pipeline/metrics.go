package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Stage run outcomes used as the "outcome" metric label.
const (
	OutcomeCompleted    = "completed"
	OutcomeFailed       = "failed"
	OutcomeShortCircuit = "short_circuit"
)

// Metrics tracks pipeline activity. A nil *Metrics is a no-op so callers
// can run stages uninstrumented.
type Metrics struct {
	stageRuns     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	uploadsTotal  prometheus.Counter
	uploadBytes   prometheus.Histogram
}

// NewMetrics creates and registers pipeline metrics on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_runs_total",
			Help:      "Pipeline stage invocations by stage and outcome",
		}, []string{"stage", "outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Wall-clock duration of completed stage runs",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"stage"}),
		uploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Accepted audio uploads",
		}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_bytes",
			Help:      "Declared size of accepted uploads",
			Buckets:   prometheus.ExponentialBuckets(64*1024, 4, 8),
		}),
	}
	reg.MustRegister(m.stageRuns, m.stageDuration, m.uploadsTotal, m.uploadBytes)
	return m
}

// ObserveStage records one stage run.
func (m *Metrics) ObserveStage(stage, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.stageRuns.WithLabelValues(stage, outcome).Inc()
	if outcome == OutcomeCompleted {
		m.stageDuration.WithLabelValues(stage).Observe(seconds)
	}
}

// ObserveUpload records one accepted upload.
func (m *Metrics) ObserveUpload(sizeBytes int64) {
	if m == nil {
		return
	}
	m.uploadsTotal.Inc()
	if sizeBytes > 0 {
		m.uploadBytes.Observe(float64(sizeBytes))
	}
}
