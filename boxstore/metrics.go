package boxstore

import "github.com/prometheus/client_golang/prometheus"

var storePuts = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "statebox",
	Subsystem: "store",
	Name:      "put_total",
	Help:      "Snapshots written",
})

var storeGets = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "statebox",
	Subsystem: "store",
	Name:      "get_total",
	Help:      "Snapshots read from pebble",
})

var cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "statebox",
	Subsystem: "store",
	Name:      "cache_hit_total",
	Help:      "Reads served from the wire-bytes cache",
})

// Metrics returns the store collectors for registration with the
// caller's prometheus registry.
func Metrics() []prometheus.Collector {
	return []prometheus.Collector{storePuts, storeGets, cacheHits}
}
