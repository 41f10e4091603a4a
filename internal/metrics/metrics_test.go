package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordsIngested.WithLabelValues("test").Inc()
	m.RecordsIngested.WithLabelValues("test").Inc()
	m.CacheLookups.WithLabelValues("hit").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsIngested.WithLabelValues("test")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "lgs_records_ingested_total")
	assert.Contains(t, names, "lgs_dashboard_cache_lookups_total")
}

func TestNopIsUsable(t *testing.T) {
	m := Nop()
	m.SkippedSubjects.WithLabelValues("Astronomi").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedSubjects.WithLabelValues("Astronomi")))
}
