// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the Prometheus collectors the query engine updates.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fol_reasoner"

// Metrics groups the engine's collectors. All methods are safe for
// concurrent use, and a nil *Metrics ignores every update.
type Metrics struct {
	QueriesTotal      prometheus.Counter
	AnswersTotal      prometheus.Counter
	DepthCutoffsTotal prometheus.Counter
	StepLimitTotal    prometheus.Counter
	ResolutionSteps   prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg creates
// unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		QueriesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "queries_total",
			Help:      `The cumulative number of queries started.`,
		}),
		AnswersTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "answers_total",
			Help:      `The cumulative number of answers delivered to callers.`,
		}),
		DepthCutoffsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "depth_cutoffs_total",
			Help: `The cumulative number of query runs in which at least one
branch was abandoned at the depth budget.

A steady increase usually means a recursive rule without a base case.`,
		}),
		StepLimitTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "step_limit_total",
			Help:      `The cumulative number of query runs stopped by the step limit.`,
		}),
		ResolutionSteps: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "resolution_steps",
			Help:      `Goals selected per completed query run.`,
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
}

// QueryStarted counts one query.
func (m *Metrics) QueryStarted() {
	if m == nil {
		return
	}
	m.QueriesTotal.Inc()
}

// Answered counts one delivered answer.
func (m *Metrics) Answered() {
	if m == nil {
		return
	}
	m.AnswersTotal.Inc()
}

// RunFinished records the outcome of one traversal.
func (m *Metrics) RunFinished(steps int, cutoff, stepLimited bool) {
	if m == nil {
		return
	}
	m.ResolutionSteps.Observe(float64(steps))
	if cutoff {
		m.DepthCutoffsTotal.Inc()
	}
	if stepLimited {
		m.StepLimitTotal.Inc()
	}
}
