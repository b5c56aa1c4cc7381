package litesigner

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the lite signer's prometheus collectors.
type Metrics struct {
	SignRequests *prometheus.CounterVec
	KeysCreated  prometheus.Counter
}

// NewMetrics creates and registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SignRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "litesigner_sign_requests_total",
			Help: "Sign requests by outcome.",
		}, []string{"outcome"}),
		KeysCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "litesigner_keys_created_total",
			Help: "Keys created since start.",
		}),
	}

	reg.MustRegister(m.SignRequests, m.KeysCreated)
	return m
}
