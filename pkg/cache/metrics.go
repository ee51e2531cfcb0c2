package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks operation cache hits by resource kind
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jira_operation_cache_hits_total",
			Help: "Total number of operation cache hits",
		},
		[]string{"kind"},
	)

	// CacheMisses tracks operation cache misses by resource kind
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jira_operation_cache_misses_total",
			Help: "Total number of operation cache misses",
		},
		[]string{"kind"},
	)

	// CacheRecords tracks records appended to operation caches by kind
	CacheRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jira_operation_cache_records_total",
			Help: "Total number of records appended to operation caches",
		},
		[]string{"kind"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jira_operation_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "load", "append", "clear"
	)
)
