package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the family module.
type Metrics struct {
	MembersRegistered  *prometheus.CounterVec
	EligibilityRefused *prometheus.CounterVec
}

// New creates a new Metrics instance with all family module metrics registered.
func New() *Metrics {
	return &Metrics{
		MembersRegistered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mutuelle_family_members_registered_total",
			Help: "Total family members registered, by relation",
		}, []string{"relation"}),

		EligibilityRefused: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mutuelle_family_eligibility_refused_total",
			Help: "Total registrations refused by the eligibility engine, by relation",
		}, []string{"relation"}),
	}
}

// IncRegistered records a successful registration.
func (m *Metrics) IncRegistered(relation string) {
	if m != nil {
		m.MembersRegistered.WithLabelValues(relation).Inc()
	}
}

// IncRefused records an eligibility refusal.
func (m *Metrics) IncRefused(relation string) {
	if m != nil {
		m.EligibilityRefused.WithLabelValues(relation).Inc()
	}
}
