// Package telemetry exposes the Prometheus counters maintained by the
// validation pipeline.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "replaywise"

// Metrics holds the pipeline counters. Construct with NewMetrics; a nil
// *Metrics is valid and drops all observations.
type Metrics struct {
	judgeCalls     prometheus.Counter
	judgeSpendUSD  prometheus.Counter
	heuristicCalls prometheus.Counter
	dbHits         prometheus.Counter
	dbMisses       prometheus.Counter
	validations    *prometheus.CounterVec
}

// NewMetrics registers the pipeline counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		judgeCalls: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "judge_calls_total",
			Help:      "Number of LLM judge evaluations performed.",
		}),
		judgeSpendUSD: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "judge_spend_usd_total",
			Help:      "Estimated USD spent on LLM judge calls.",
		}),
		heuristicCalls: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "heuristic_calls_total",
			Help:      "Number of heuristic validation passes.",
		}),
		dbHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "db_hits_total",
			Help:      "Cache lookups answered from the historical store.",
		}),
		dbMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "db_misses_total",
			Help:      "Cache lookups that found no acceptable record.",
		}),
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "validations_total",
			Help:      "Completed validations by primary method.",
		}, []string{"method"}),
	}
}

func (m *Metrics) JudgeCall(spendUSD float64) {
	if m == nil {
		return
	}
	m.judgeCalls.Inc()
	m.judgeSpendUSD.Add(spendUSD)
}

func (m *Metrics) HeuristicCall() {
	if m == nil {
		return
	}
	m.heuristicCalls.Inc()
}

func (m *Metrics) DBHit() {
	if m == nil {
		return
	}
	m.dbHits.Inc()
}

func (m *Metrics) DBMiss() {
	if m == nil {
		return
	}
	m.dbMisses.Inc()
}

func (m *Metrics) Validation(method string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(method).Inc()
}
