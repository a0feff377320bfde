// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus counters exposed on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	VotesCast = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pollhub_votes_cast_total", Help: "Total votes cast per choice"},
		[]string{"choice"},
	)
	PollResets = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "pollhub_poll_resets_total", Help: "Total poll resets"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pollhub_login_attempts_total", Help: "Login attempts by outcome"},
		[]string{"outcome"},
	)
	StorageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pollhub_storage_failures_total", Help: "Datastore failures by operation"},
		[]string{"op"},
	)
)

var once sync.Once

// Register adds the collectors to the default registry. Repeat calls are no-ops.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(VotesCast, PollResets, LoginAttempts, StorageFailures)
	})
}
