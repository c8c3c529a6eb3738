package statebox

import "github.com/prometheus/client_golang/prometheus"

var boxModifies = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "statebox",
	Name:      "modify_total",
	Help:      "Branches created via Modify",
})

var boxMerges = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "statebox",
	Name:      "merge_total",
	Help:      "Merge reconciliations performed",
})

var mergeReplayed = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "statebox",
	Name:      "merge_replayed_ops_total",
	Help:      "Operations replayed during merges",
})

var wireSerialized = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "statebox",
	Name:      "serialize_total",
	Help:      "Containers encoded to the wire format",
})

var wireDeserialized = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "statebox",
	Name:      "deserialize_total",
	Help:      "Containers decoded from the wire format",
})

// Metrics returns the package collectors for registration with the
// caller's prometheus registry.
func Metrics() []prometheus.Collector {
	return []prometheus.Collector{
		boxModifies, boxMerges, mergeReplayed, wireSerialized, wireDeserialized,
	}
}
