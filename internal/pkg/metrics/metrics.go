package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "market_aggregator"

var (
	MulticallBatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "multicall_batches_total",
		Help:      "Multicall batches executed, by chain and result.",
	}, []string{"chain_id", "result"})

	MulticallRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "multicall_retries_total",
		Help:      "Multicall attempts that failed and were retried.",
	}, []string{"chain_id"})

	PriceRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_requests_total",
		Help:      "Price API requests, by endpoint and result.",
	}, []string{"endpoint", "result"})

	PriceCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_cache_lookups_total",
		Help:      "Price cache lookups, by outcome (hit or miss).",
	}, []string{"outcome"})

	MetadataFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "metadata_fetches_total",
		Help:      "NFT metadata fetches, by source and result.",
	}, []string{"source", "result"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "REST request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

var registerOnce sync.Once

// MustRegister registers all collectors with the default registry once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			MulticallBatches,
			MulticallRetries,
			PriceRequests,
			PriceCacheLookups,
			MetadataFetches,
			HTTPRequestDuration,
		)
	})
}

// Result maps an error to a metric label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
