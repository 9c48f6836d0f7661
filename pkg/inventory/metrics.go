package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hospitalFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "givelife_inventory_hospital_fetch_total",
		Help: "Per-hospital inventory fetches made while aggregating, by outcome",
	}, []string{"outcome"}) // outcome: success, failure

	aggregateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "givelife_inventory_aggregate_duration_seconds",
		Help:    "Wall time of a multi-hospital inventory aggregation",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)
