package configator_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utiligize/configator/pkg/configator"
)

func loadCount(t *testing.T, result string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "configator_loads_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "result" && lp.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

// Not parallel: counters are process-wide.
func TestMetrics(t *testing.T) {
	configator.InitMetrics()
	configator.InitMetrics()

	okBefore := loadCount(t, "ok")
	missingBefore := loadCount(t, "vault_not_found")

	_, err := configator.Load[serviceConfig](context.Background(), "", "V", "I", configator.WithClient(newFake()))
	require.NoError(t, err)
	_, err = configator.Load[serviceConfig](context.Background(), "", "nope", "I",
		configator.WithClient(newFake()), configator.WithLogger(nopLogger(t)))
	require.Error(t, err)

	assert.Equal(t, okBefore+1, loadCount(t, "ok"))
	assert.Equal(t, missingBefore+1, loadCount(t, "vault_not_found"))

	count, err := testutil.GatherAndCount(prometheus.DefaultGatherer,
		"configator_load_duration_seconds", "configator_fields_hydrated_total", "configator_reference_hops_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 3)
}
