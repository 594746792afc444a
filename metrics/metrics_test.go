package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/commutemap/census"
	"github.com/zalepa/commutemap/classify"
)

// gathered returns the summed sample value of every gathered family by name.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]float64, len(families))
	for _, f := range families {
		var sum float64
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				sum += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				sum += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				sum += float64(m.GetHistogram().GetSampleCount())
			}
		}
		out[f.GetName()] = sum
	}
	return out
}

func TestNewForTesting(t *testing.T) {
	m, reg := NewForTesting()

	m.RowsLoaded.Add(3)
	m.Classified.WithLabelValues("dominant", "bicycle").Inc()
	m.Classified.WithLabelValues("dominant", "walk").Inc()
	m.HTTPRequests.WithLabelValues("/api/regions", "200").Inc()
	m.HTTPDuration.WithLabelValues("/api/regions").Observe(0.01)
	m.CitywideTotal.Set(10000)

	got := gathered(t, reg)
	assert.Equal(t, 3.0, got["commutemap_rows_loaded_total"])
	assert.Equal(t, 2.0, got["commutemap_communities_classified_total"])
	assert.Equal(t, 1.0, got["commutemap_http_requests_total"])
	assert.Equal(t, 1.0, got["commutemap_http_request_duration_seconds"])
	assert.Equal(t, 10000.0, got["commutemap_citywide_total"])
}

func TestNewForTesting_Independent(t *testing.T) {
	a, _ := NewForTesting()
	b, regB := NewForTesting()
	a.RowsLoaded.Inc()
	b.LoadErrors.Inc()

	got := gathered(t, regB)
	assert.Equal(t, 0.0, got["commutemap_rows_loaded_total"])
	assert.Equal(t, 1.0, got["commutemap_load_errors_total"])
}

func TestObserveResult(t *testing.T) {
	m, reg := NewForTesting()
	m.ObserveResult(&classify.Result{
		Mode: classify.ModeDominant,
		Communities: map[string]classify.Classification{
			"ABB": {Code: "ABB", Mode: classify.ModeDominant, HasData: true, Dominant: census.DroveAlone},
			"01B": {Code: "01B", Mode: classify.ModeDominant},
		},
	})

	got := gathered(t, reg)
	assert.Equal(t, 2.0, got["commutemap_communities_classified_total"])
}

func TestClassLabel(t *testing.T) {
	tests := []struct {
		c    classify.Classification
		want string
	}{
		{classify.Classification{Mode: classify.ModeDominant, Dominant: census.Walk}, "walk"},
		{classify.Classification{Mode: classify.ModeDominant}, "none"},
		{classify.Classification{Mode: classify.ModePercentage, HasData: true, Bucket: classify.OneToTwo}, "1.00-1.99%"},
		{classify.Classification{Mode: classify.ModePercentage}, "non-residential"},
		{classify.Classification{Mode: classify.ModeBreakdown, HasData: true}, "data"},
		{classify.Classification{Mode: classify.ModeBreakdown}, "no-data"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassLabel(tt.c))
	}
}
