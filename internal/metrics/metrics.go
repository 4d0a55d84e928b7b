// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitwire_fetch_total",
			Help: "Total number of repository materializations performed",
		},
		[]string{"url"},
	)

	fetchFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitwire_fetch_failed_total",
			Help: "Total number of failed repository materializations",
		},
		[]string{"url"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gitwire_fetch_duration_seconds",
			Help:    "Repository materialization duration in seconds",
			Buckets: []float64{0.1, 0.2, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"url"},
	)

	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitwire_cache_hit_total",
			Help: "Total number of entries served from an already materialized checkout",
		},
		[]string{"url"},
	)

	syncFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitwire_sync_failed_total",
			Help: "Total number of failed sync operations",
		},
		[]string{"entry"},
	)

	checkMismatch = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitwire_check_mismatch_total",
			Help: "Total number of check operations that found drift",
		},
		[]string{"entry"},
	)
)

func FetchSucceeded(url string, start time.Time) {
	fetchCount.WithLabelValues(url).Inc()
	fetchDuration.WithLabelValues(url).Observe(time.Since(start).Seconds())
}

func FetchFailed(url string) {
	fetchFailed.WithLabelValues(url).Inc()
}

func CacheHit(url string) {
	cacheHits.WithLabelValues(url).Inc()
}

func SyncFailed(entry string) {
	syncFailed.WithLabelValues(entry).Inc()
}

func CheckMismatch(entry string) {
	checkMismatch.WithLabelValues(entry).Inc()
}
