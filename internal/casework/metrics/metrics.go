package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the casework module.
type Metrics struct {
	// Answer saves by journey and outcome ("saved", "invalid")
	AnswerSaves *prometheus.CounterVec

	// Validation failures by field
	ValidationFailures *prometheus.CounterVec

	// Commit outcomes ("committed", "conflict", "failed")
	Commits *prometheus.CounterVec

	// Commit latency including plan and transaction
	CommitLatency prometheus.Histogram

	// Notify publish failures by mode ("best_effort", "gating")
	NotifyFailures *prometheus.CounterVec
}

// New creates a Metrics instance with all casework metrics registered.
func New() *Metrics {
	return &Metrics{
		AnswerSaves: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "casework_answer_saves_total",
			Help: "Total answer save attempts by journey and outcome",
		}, []string{"journey", "outcome"}),

		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "casework_validation_failures_total",
			Help: "Total field validation failures by field",
		}, []string{"field"}),

		Commits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "casework_commits_total",
			Help: "Total commit attempts by outcome",
		}, []string{"outcome"}),

		CommitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "casework_commit_duration_seconds",
			Help:    "Duration of committing a journey including planning and the transaction",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		NotifyFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "casework_notify_failures_total",
			Help: "Total event publish failures by mode",
		}, []string{"mode"}),
	}
}

// IncrementSave records an answer save attempt.
func (m *Metrics) IncrementSave(journey, outcome string) {
	if m != nil {
		m.AnswerSaves.WithLabelValues(journey, outcome).Inc()
	}
}

// IncrementValidationFailure records a field failing validation.
func (m *Metrics) IncrementValidationFailure(field string) {
	if m != nil {
		m.ValidationFailures.WithLabelValues(field).Inc()
	}
}

// IncrementCommit records a commit attempt outcome.
func (m *Metrics) IncrementCommit(outcome string) {
	if m != nil {
		m.Commits.WithLabelValues(outcome).Inc()
	}
}

// ObserveCommitLatency records the total commit duration.
func (m *Metrics) ObserveCommitLatency(d time.Duration) {
	if m != nil {
		m.CommitLatency.Observe(d.Seconds())
	}
}

// IncrementNotifyFailure records a publish failure.
func (m *Metrics) IncrementNotifyFailure(mode string) {
	if m != nil {
		m.NotifyFailures.WithLabelValues(mode).Inc()
	}
}
