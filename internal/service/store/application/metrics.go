// internal/service/store/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_orders_placed_total",
		Help: "Number of successfully placed orders.",
	})

	orderFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_order_failures_total",
		Help: "Number of failed order placements by reason.",
	}, []string{"reason"})

	ordersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_orders_cancelled_total",
		Help: "Number of cancelled orders (stock returned).",
	})

	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_product_cache_hits_total",
		Help: "Read-side cache hits.",
	})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_product_cache_misses_total",
		Help: "Read-side cache misses.",
	})
)
