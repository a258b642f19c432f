// Package metrics exposes the Prometheus collectors of the circuit engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "padel_circuit"

// Recorder is what services report to. Prometheus backs it in production, Noop in tests.
type Recorder interface {
	ObserveOperation(operation, class string, took time.Duration)
	ResultSubmitted(stage string, decided bool)
	BracketGenerated(pairCount int)
	TournamentClosed(competitors int)
}

type Prometheus struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	results      *prometheus.CounterVec
	brackets     *prometheus.CounterVec
	closures     prometheus.Counter
	ledgerWrites prometheus.Counter
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by outcome class.",
		}, []string{"operation", "class"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_submitted_total",
			Help:      "Accepted match results by stage and whether they decided the match.",
		}, []string{"stage", "decided"}),
		brackets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "brackets_generated_total",
			Help:      "Generated brackets by pair count.",
		}, []string{"pairs"}),
		closures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournaments_closed_total",
			Help:      "Tournaments settled.",
		}),
		ledgerWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_written_total",
			Help:      "Points ledger rows written by closures.",
		}),
	}
	for _, c := range []prometheus.Collector{p.operations, p.duration, p.results, p.brackets, p.closures, p.ledgerWrites} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) ObserveOperation(operation, class string, took time.Duration) {
	p.operations.WithLabelValues(operation, class).Inc()
	p.duration.WithLabelValues(operation).Observe(took.Seconds())
}

func (p *Prometheus) ResultSubmitted(stage string, decided bool) {
	p.results.WithLabelValues(stage, strconv.FormatBool(decided)).Inc()
}

func (p *Prometheus) BracketGenerated(pairCount int) {
	p.brackets.WithLabelValues(strconv.Itoa(pairCount)).Inc()
}

func (p *Prometheus) TournamentClosed(competitors int) {
	p.closures.Inc()
	p.ledgerWrites.Add(float64(competitors))
}

// Noop discards everything.
type Noop struct{}

func (Noop) ObserveOperation(string, string, time.Duration) {}
func (Noop) ResultSubmitted(string, bool)                   {}
func (Noop) BracketGenerated(int)                           {}
func (Noop) TournamentClosed(int)                           {}
