// internal/metrics/metrics.go
//
// Prometheus instrumentation for the game service.
// All methods are safe on a nil *Metrics so packages can run uninstrumented in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "geoquest"

type Metrics struct {
	SessionsStarted   *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
	QuestionsAsked    *prometheus.CounterVec
	OracleFallbacks   *prometheus.CounterVec
	OracleLatency     prometheus.Histogram
	Guesses           *prometheus.CounterVec
	GamesWon          *prometheus.CounterVec
	PersistenceErrors *prometheus.CounterVec
	SelectionFailures *prometheus.CounterVec
	CompletionSeconds *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Game sessions started, by mode",
		}, []string{"mode"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory",
		}),
		QuestionsAsked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_asked_total",
			Help:      "Questions answered, by answer token",
		}, []string{"answer"}),
		OracleFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_fallbacks_total",
			Help:      "Oracle answers not taken from the model, by reason",
		}, []string{"reason"}),
		OracleLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_latency_seconds",
			Help:      "Model call latency",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		Guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_total",
			Help:      "Guesses submitted, by outcome",
		}, []string{"outcome"}),
		GamesWon: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_won_total",
			Help:      "Won games, by mode",
		}, []string{"mode"}),
		PersistenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_errors_total",
			Help:      "Failed best-effort writes, by record kind",
		}, []string{"kind"}),
		SelectionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_failures_total",
			Help:      "Session starts aborted by location selection, by reason",
		}, []string{"reason"}),
		CompletionSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_seconds",
			Help:      "Time to a correct guess",
			Buckets:   prometheus.ExponentialBuckets(15, 2, 8),
		}, []string{"mode"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.SessionsStarted,
		m.ActiveSessions,
		m.QuestionsAsked,
		m.OracleFallbacks,
		m.OracleLatency,
		m.Guesses,
		m.GamesWon,
		m.PersistenceErrors,
		m.SelectionFailures,
		m.CompletionSeconds,
	)
	return m
}

// Handler serves the registry this Metrics was created with.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionStarted(mode string) {
	if m == nil {
		return
	}
	m.SessionsStarted.WithLabelValues(mode).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) QuestionAnswered(answer string) {
	if m == nil {
		return
	}
	m.QuestionsAsked.WithLabelValues(answer).Inc()
}

func (m *Metrics) OracleFallback(reason string) {
	if m == nil {
		return
	}
	m.OracleFallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveOracle(d time.Duration) {
	if m == nil {
		return
	}
	m.OracleLatency.Observe(d.Seconds())
}

func (m *Metrics) GuessSubmitted(correct bool) {
	if m == nil {
		return
	}
	outcome := "incorrect"
	if correct {
		outcome = "correct"
	}
	m.Guesses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) GameWon(mode string, seconds int) {
	if m == nil {
		return
	}
	m.GamesWon.WithLabelValues(mode).Inc()
	m.CompletionSeconds.WithLabelValues(mode).Observe(float64(seconds))
}

func (m *Metrics) PersistenceError(kind string) {
	if m == nil {
		return
	}
	m.PersistenceErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) SelectionFailed(reason string) {
	if m == nil {
		return
	}
	m.SelectionFailures.WithLabelValues(reason).Inc()
}
