package bridge

import "github.com/prometheus/client_golang/prometheus"

var (
	corruptHandles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "velox",
			Subsystem: "bridge",
			Name:      "corrupt_handles_total",
			Help:      "The total number of handles rejected for an implausible item count.",
		},
	)
	invalidPointers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "velox",
			Subsystem: "bridge",
			Name:      "invalid_pointers_total",
			Help:      "The total number of item pointers skipped by validation.",
		},
	)
)

func init() {
	prometheus.MustRegister(corruptHandles)
	prometheus.MustRegister(invalidPointers)
}
