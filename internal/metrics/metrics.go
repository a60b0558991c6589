// Package metrics exposes process-local counters for the write-through
// caches. Every component cache reports hits and misses under its own label.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_cache_hits_total",
		Help: "Number of component cache lookups served from memory.",
	}, []string{"cache"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_cache_misses_total",
		Help: "Number of component cache lookups that fell back to the backing store.",
	}, []string{"cache"})
)

// CacheHit records a cache lookup served from memory.
func CacheHit(cache string) {
	cacheHits.WithLabelValues(cache).Inc()
}

// CacheMiss records a cache lookup that fell back to the backing store.
func CacheMiss(cache string) {
	cacheMisses.WithLabelValues(cache).Inc()
}
