package filelock

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lockWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "menu_lock_wait_seconds",
		Help:    "Time spent waiting to acquire the menu write lock",
		Buckets: []float64{0.001, 0.01, 0.05, 0.12, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	lockHeldSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "menu_lock_held_seconds",
		Help:    "Time the menu write lock was held",
		Buckets: prometheus.DefBuckets,
	})

	lockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_lock_timeouts_total",
		Help: "Lock acquisitions abandoned after the timeout",
	})

	staleRecoveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_lock_stale_recoveries_total",
		Help: "Abandoned lock files cleared after the stale threshold",
	})
)
