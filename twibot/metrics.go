package twibot

import "github.com/prometheus/client_golang/prometheus"

// Resolution outcomes, used as the outcome label value.
const (
	outcomeOK           = "ok"
	outcomeNotCommand   = "not_command"
	outcomeUnknown      = "unknown_command"
	outcomeParseError   = "parse_error"
	outcomeConvertError = "convert_error"
	outcomeRestricted   = "restricted"
	outcomeError        = "error"
)

// Metrics counts command resolutions by outcome. The embedding adapter
// owns serving them; this package only fills the collectors.
type Metrics struct {
	resolutions *prometheus.CounterVec
}

// NewMetrics creates Metrics and registers its collectors on reg, which
// may be nil to skip registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twibot_resolutions_total",
			Help: "Command resolutions by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.resolutions)
	}
	return m
}

// observe is nil-safe so the Resolver can treat metrics as optional.
func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}
