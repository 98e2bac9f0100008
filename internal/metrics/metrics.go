// Package metrics exposes Prometheus counters for rounds and guesses.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RoundsStarted  *prometheus.CounterVec
	RoundsFinished *prometheus.CounterVec
	Guesses        *prometheus.CounterVec
	AttemptsUsed   prometheus.Histogram
	ActiveRounds   prometheus.Gauge
}

// New builds the metrics on a private registry so tests can create many.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RoundsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_started_total",
			Help:      "Rounds started, by mode",
		}, []string{"mode"}),
		RoundsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_finished_total",
			Help:      "Rounds finished, by outcome",
		}, []string{"outcome"}),
		Guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_total",
			Help:      "Guess submissions, by result",
		}, []string{"result"}),
		AttemptsUsed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempts_used",
			Help:      "Rows used by finished rounds",
			Buckets:   prometheus.LinearBuckets(1, 1, 5),
		}),
		ActiveRounds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rounds",
			Help:      "Rounds in progress held in memory",
		}),
	}

	m.registry.MustRegister(
		m.RoundsStarted,
		m.RoundsFinished,
		m.Guesses,
		m.AttemptsUsed,
		m.ActiveRounds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RoundStarted(mode string) { m.RoundsStarted.WithLabelValues(mode).Inc() }

func (m *Metrics) GuessAccepted() { m.Guesses.WithLabelValues("accepted").Inc() }

func (m *Metrics) GuessRejected() { m.Guesses.WithLabelValues("rejected").Inc() }

func (m *Metrics) RoundFinished(outcome string, attempts int) {
	m.RoundsFinished.WithLabelValues(outcome).Inc()
	m.AttemptsUsed.Observe(float64(attempts))
}

func (m *Metrics) SetActiveRounds(n int) { m.ActiveRounds.Set(float64(n)) }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
