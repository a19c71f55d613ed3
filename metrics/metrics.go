/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Change-set outcomes.
const (
	OutcomeInsert  = "insert"
	OutcomeUpdate  = "update"
	OutcomeNoop    = "noop"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Recorder counts change-set outcomes per entity type and times commits.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	changeSets *prometheus.CounterVec
	commits    *prometheus.HistogramVec
}

// NewRecorder registers the collectors with reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		changeSets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unitofwork_changesets_total",
				Help: "Change-set computations by entity type and outcome",
			},
			[]string{"entity", "outcome"},
		),
		commits: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "unitofwork_commit_duration_seconds",
				Help:    "Duration of unit-of-work commits",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
	}
}

// Observe counts one computation.
func (r *Recorder) Observe(entity, outcome string) {
	if r == nil {
		return
	}
	r.changeSets.WithLabelValues(entity, outcome).Inc()
}

// ObserveCommit records how long a commit took and whether it failed.
func (r *Recorder) ObserveCommit(started time.Time, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.commits.WithLabelValues(result).Observe(time.Since(started).Seconds())
}
