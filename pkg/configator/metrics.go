package configator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utiligize/configator/pkg/hydrate"
)

const (
	resultOK            = "ok"
	resultVaultNotFound = "vault_not_found"
	resultItemNotFound  = "item_not_found"
	resultInvalid       = "invalid"
	resultCancelled     = "cancelled"
	resultError         = "error"
)

var (
	loadsTotal   *prometheus.CounterVec
	loadDuration prometheus.Histogram

	metricsOnce       sync.Once
	metricsRegistered atomic.Bool
)

// InitMetrics registers configator's Prometheus metrics, including the
// per-field hydration metrics, with the default registry. Nothing is recorded
// until it has been called.
func InitMetrics() {
	metricsOnce.Do(func() {
		loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "configator_loads_total",
			Help: "Total number of configuration loads, by result",
		}, []string{"result"})
		loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "configator_load_duration_seconds",
			Help:    "Duration of configuration loads in seconds, including 1Password round trips",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})
		metricsRegistered.Store(true)
	})
	hydrate.InitMetrics()
}

func observeLoad(err error, elapsed time.Duration) {
	if !metricsRegistered.Load() {
		return
	}
	loadsTotal.WithLabelValues(loadResult(err)).Inc()
	loadDuration.Observe(elapsed.Seconds())
}

func loadResult(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrVaultNotFound):
		return resultVaultNotFound
	case errors.Is(err, ErrItemNotFound):
		return resultItemNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resultCancelled
	case errors.Is(err, hydrate.ErrSectionNotFound),
		errors.Is(err, hydrate.ErrFieldNotFound),
		errors.Is(err, hydrate.ErrInvalidLiteral),
		errors.Is(err, hydrate.ErrInvalidBooleanLiteral),
		errors.Is(err, hydrate.ErrMalformedContainerLiteral),
		errors.Is(err, hydrate.ErrReferenceChainTooDeep),
		errors.Is(err, hydrate.ErrSchemaValidationFailed),
		errors.Is(err, hydrate.ErrInvalidSchema):
		return resultInvalid
	}
	return resultError
}
