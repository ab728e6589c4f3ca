// Package metrics counts action outcomes for the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess  = "success"
	ResultInvalid  = "invalid"
	ResultRejected = "rejected"
	ResultError    = "error"
)

type Recorder struct {
	actions *prometheus.CounterVec
}

// New registers the counters with reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Recorder {
	return &Recorder{
		actions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "action_total",
			Help:      "Handled form actions by action name and result.",
		}, []string{"action", "result"}),
	}
}

// Action counts one handled action. It is a no-op on a nil Recorder.
func (r *Recorder) Action(name, result string) {
	if r == nil {
		return
	}

	r.actions.WithLabelValues(name, result).Inc()
}
