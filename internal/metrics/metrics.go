// Package metrics exposes Prometheus counters for session outcomes, reward
// grants and level-ups.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/midolearning/village/internal/progression"
	"github.com/midolearning/village/internal/village"
)

// Session results used as the "result" label.
const (
	ResultCompleted    = "completed"
	ResultInvalid      = "invalid"
	ResultUnconfigured = "unconfigured"
	ResultNotFound     = "not_found"
	ResultDuplicate    = "duplicate"
	ResultStageLocked  = "stage_locked"
	ResultError        = "error"
)

// Metrics holds the village collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	Sessions          *prometheus.CounterVec
	ExperienceGained  *prometheus.CounterVec
	CurrencyGranted   *prometheus.CounterVec
	ThrottleDecisions *prometheus.CounterVec
	LevelUps          *prometheus.CounterVec
}

var _ village.Observer = (*Metrics)(nil)

// New registers the village collectors plus Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "village",
			Subsystem: "sessions",
			Name:      "total",
			Help:      "Session submissions by skill and result.",
		}, []string{"skill", "result"}),
		ExperienceGained: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "village",
			Subsystem: "progression",
			Name:      "experience_gained_total",
			Help:      "Experience awarded by skill.",
		}, []string{"skill"}),
		CurrencyGranted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "village",
			Subsystem: "rewards",
			Name:      "currency_granted_total",
			Help:      "Reward currency granted after throttling, by skill.",
		}, []string{"skill"}),
		ThrottleDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "village",
			Subsystem: "rewards",
			Name:      "throttle_decisions_total",
			Help:      "Reward throttle decisions by reason.",
		}, []string{"reason"}),
		LevelUps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "village",
			Subsystem: "progression",
			Name:      "level_ups_total",
			Help:      "Level-ups by kind (character or skill).",
		}, []string{"kind"}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SessionCompleted records a successful session.
func (m *Metrics) SessionCompleted(skillID string, res *village.Result) {
	m.Sessions.WithLabelValues(skillID, ResultCompleted).Inc()
	m.ExperienceGained.WithLabelValues(skillID).Add(float64(res.Outcome.ExperienceGained))
	m.CurrencyGranted.WithLabelValues(skillID).Add(float64(res.Granted))
	m.ThrottleDecisions.WithLabelValues(string(res.Decision.Reason)).Inc()
	if res.LevelUp {
		m.LevelUps.WithLabelValues("character").Inc()
	}
	if res.SkillLevelUp {
		m.LevelUps.WithLabelValues("skill").Inc()
	}
}

// SessionRejected records a session that was not applied.
func (m *Metrics) SessionRejected(skillID string, err error) {
	m.Sessions.WithLabelValues(skillID, Classify(err)).Inc()
}

// Classify maps a CompleteSession error to a result label.
func Classify(err error) string {
	switch {
	case err == nil:
		return ResultCompleted
	case progression.IsValidation(err):
		return ResultInvalid
	case progression.IsConfiguration(err):
		return ResultUnconfigured
	case errors.Is(err, village.ErrCharacterNotFound):
		return ResultNotFound
	case errors.Is(err, village.ErrDuplicateSession):
		return ResultDuplicate
	case errors.Is(err, village.ErrStageLocked):
		return ResultStageLocked
	default:
		return ResultError
	}
}
