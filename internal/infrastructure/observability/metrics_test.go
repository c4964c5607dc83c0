package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

func TestCacheMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCacheMetrics(reg)

	m.CacheHit(keys.New("accession", "detail", "A1"))
	m.CacheHit(keys.New("accession", "list", "p1"))
	m.CacheMiss(keys.New("patient", "detail", "P1"))
	m.CacheEvicted(3)
	m.RecordInvalidation(entities.EntityAccession, "local", 2, 5)
	m.RecordInvalidationError("publish")
	m.RecordMutation(entities.EntityAccession, entities.MutationActionStatusChange, entities.MutationOutcomeSucceeded, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.lookups.WithLabelValues("accession", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("patient", "miss")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.evictions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invalidations.WithLabelValues("accession", "local")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.invalidatedEntries.WithLabelValues("accession", "local")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invalidationErrors.WithLabelValues("publish")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("accession", "status-change", "succeeded")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "lims_gateway_mutation_duration_seconds")
}

func TestCacheMetrics_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCacheMetrics(reg)
	assert.Panics(t, func() { NewCacheMetrics(reg) })
}

func TestInitLogger_Level(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	InitLogger("lims-gateway", "production", "debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	InitLogger("lims-gateway", "production", "shouting")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
