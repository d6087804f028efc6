package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the benefit module.
type Metrics struct {
	RequestsSubmitted  *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	TransitionsRefused *prometheus.CounterVec
	AmountResolved     *prometheus.HistogramVec
}

// New creates a new Metrics instance with all benefit module metrics registered.
func New() *Metrics {
	return &Metrics{
		RequestsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mutuelle_benefit_requests_submitted_total",
			Help: "Total benefit requests submitted, by benefit type",
		}, []string{"type"}),

		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mutuelle_benefit_transitions_total",
			Help: "Total lifecycle transitions applied, by action and resulting status",
		}, []string{"action", "status"}),

		TransitionsRefused: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mutuelle_benefit_transitions_refused_total",
			Help: "Total lifecycle transitions refused, by action and error code",
		}, []string{"action", "code"}),

		AmountResolved: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mutuelle_benefit_amount_resolved",
			Help:    "Resolved request amounts in currency units, by benefit type",
			Buckets: prometheus.ExponentialBuckets(1000, 4, 8),
		}, []string{"type"}),
	}
}

// IncSubmitted records a successful submission.
func (m *Metrics) IncSubmitted(benefitType string) {
	if m != nil {
		m.RequestsSubmitted.WithLabelValues(benefitType).Inc()
	}
}

// IncTransition records an applied transition.
func (m *Metrics) IncTransition(action, status string) {
	if m != nil {
		m.Transitions.WithLabelValues(action, status).Inc()
	}
}

// IncRefused records a refused transition.
func (m *Metrics) IncRefused(action, code string) {
	if m != nil {
		m.TransitionsRefused.WithLabelValues(action, code).Inc()
	}
}

// ObserveAmount records a resolved amount.
func (m *Metrics) ObserveAmount(benefitType string, amount int64) {
	if m != nil {
		m.AmountResolved.WithLabelValues(benefitType).Observe(float64(amount))
	}
}
