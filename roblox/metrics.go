package roblox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Add Prometheus metrics
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rgwa_api_requests_total",
		Help: "The total number of requests issued against the groups API",
	}, []string{"status"})

	apiRateLimitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rgwa_api_rate_limited_total",
		Help: "The total number of rate limited responses from the groups API",
	})

	apiOperatorAbortsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rgwa_api_operator_aborts_total",
		Help: "The total number of fetches abandoned after an unexpected status",
	})

	rankLookupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rgwa_rank_lookups_total",
		Help: "The total number of rank lookups that hit the network",
	})

	rankCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rgwa_rank_cache_hits_total",
		Help: "The total number of rank lookups served from the cache",
	})
)
