package hydrate

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeMatched = "matched"
	outcomeDefault = "default"
	outcomeSkipped = "skipped"
)

var (
	// fieldsHydrated counts leaf fields by how they were populated.
	fieldsHydrated *prometheus.CounterVec

	// referenceHops counts op:// references followed.
	referenceHops prometheus.Counter

	metricsOnce       sync.Once
	metricsRegistered atomic.Bool
)

// InitMetrics registers the hydration metrics with the default Prometheus
// registry. It is safe to call more than once; recording is a no-op until it
// has been called.
func InitMetrics() {
	metricsOnce.Do(func() {
		fieldsHydrated = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "configator_fields_hydrated_total",
			Help: "Total number of schema fields hydrated, by outcome (matched, default, skipped)",
		}, []string{"outcome"})
		referenceHops = promauto.NewCounter(prometheus.CounterOpts{
			Name: "configator_reference_hops_total",
			Help: "Total number of op:// references dereferenced",
		})
		metricsRegistered.Store(true)
	})
}

func observeField(outcome string) {
	if metricsRegistered.Load() {
		fieldsHydrated.WithLabelValues(outcome).Inc()
	}
}

func observeReferenceHop() {
	if metricsRegistered.Load() {
		referenceHops.Inc()
	}
}
