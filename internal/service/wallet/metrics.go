package wallet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_transfers_total",
		Help: "Transfer attempts by outcome",
	}, []string{"outcome"})

	transferDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wallet_transfer_duration_seconds",
		Help:    "End-to-end transfer latency including lock wait",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	balanceCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_balance_cache_hits_total",
		Help: "Balance listings served from Redis",
	})

	balanceCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_balance_cache_misses_total",
		Help: "Balance listings that fell through to Postgres",
	})
)
