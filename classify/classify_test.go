package classify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/commutemap/census"
)

func record(code string, counts map[census.Category]int) census.Record {
	r := census.Record{Code: code, Counts: counts}
	for _, v := range counts {
		r.Total += v
	}
	return r
}

func index(t *testing.T, rows ...census.Row) (*census.Index, int) {
	t.Helper()
	idx, total, err := census.Normalize(rows, census.Categories, census.Bicycle)
	require.NoError(t, err)
	return idx, total
}

func TestDominant(t *testing.T) {
	tests := []struct {
		name   string
		counts map[census.Category]int
		want   census.Category
	}{
		{"bicycle beats drove alone", map[census.Category]int{census.Bicycle: 1200, census.DroveAlone: 800}, census.Bicycle},
		{"single nonzero", map[census.Category]int{census.Walk: 1}, census.Walk},
		{"all zero", map[census.Category]int{census.Walk: 0, census.Transit: 0}, None},
		{"empty record", map[census.Category]int{}, None},
		{"tie goes to earlier category", map[census.Category]int{census.Transit: 50, census.Walk: 50}, census.Transit},
		{"tie on first category", map[census.Category]int{census.DroveAlone: 9, census.WorkAtHome: 9}, census.DroveAlone},
		{"later category strictly larger", map[census.Category]int{census.DroveAlone: 9, census.WorkAtHome: 10}, census.WorkAtHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dominant(record("C1", tt.counts), true, census.Categories)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDominant_AbsentRecord(t *testing.T) {
	assert.Equal(t, None, Dominant(census.Record{}, false, census.Categories))
}

func TestDominant_IsMaximal(t *testing.T) {
	counts := map[census.Category]int{
		census.DroveAlone: 3101, census.NoWork: 1020, census.Transit: 905,
		census.CarpoolDr: 98, census.CarpoolPa: 120, census.Bicycle: 44,
		census.Motorcycle: 7, census.Walk: 66, census.WorkAtHome: 201,
	}
	rec := record("ABB", counts)

	got := Dominant(rec, true, census.Categories)
	for _, c := range census.Categories {
		assert.GreaterOrEqual(t, rec.Count(got), rec.Count(c))
	}
}

func TestDominant_TieBreakFollowsGivenOrder(t *testing.T) {
	rec := record("C1", map[census.Category]int{census.Transit: 50, census.Walk: 50})
	order := []census.Category{census.Walk, census.Transit}

	assert.Equal(t, census.Walk, Dominant(rec, true, order))
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want Bucket
	}{
		{0, BelowHalf},
		{0.45, BelowHalf},
		{0.4999, BelowHalf},
		{0.5, HalfToOne},
		{0.99, HalfToOne},
		{1.0, OneToTwo},
		{1.99, OneToTwo},
		{2.0, TwoToThree},
		{2.999, TwoToThree},
		{3.0, ThreeToFour},
		{3.99, ThreeToFour},
		{4.0, FourPlus},
		{57.3, FourPlus},
		{100, FourPlus},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.pct), "BucketFor(%v)", tt.pct)
	}
}

func TestPercent(t *testing.T) {
	pct, err := Percent(45, 10000)
	require.NoError(t, err)
	assert.InDelta(t, 0.45, pct, 1e-12)
	assert.Equal(t, BelowHalf, BucketFor(pct))

	_, err = Percent(45, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestBucketString(t *testing.T) {
	assert.Equal(t, "<0.50%", BelowHalf.String())
	assert.Equal(t, ">4.00%", FourPlus.String())
	assert.Equal(t, "non-residential", NonResidential.String())
	assert.False(t, NonResidential.IsRange())
	for _, b := range Buckets {
		assert.True(t, b.IsRange(), b.String())
	}
}

func bikeRow(code, bikes string) census.Row {
	return census.Row{census.CodeColumn: code, "bicycle": bikes, "drovealone": "100"}
}

func TestClassify_Percentage(t *testing.T) {
	idx, total := index(t,
		bikeRow("A", "45"),
		bikeRow("B", "50"),
		bikeRow("C", "400"),
		bikeRow("D", "9,505"),
	)
	require.Equal(t, 10000, total)

	res, err := Classify([]string{"A", "B", "C", "D", "GEO_ONLY"}, idx, total, Options{
		Mode:       ModePercentage,
		Designated: census.Bicycle,
	})
	require.NoError(t, err)

	assert.Equal(t, 10000, res.CitywideTotal)
	assert.Equal(t, BelowHalf, res.Get("A").Bucket)
	assert.Equal(t, HalfToOne, res.Get("B").Bucket)
	assert.Equal(t, FourPlus, res.Get("C").Bucket)
	assert.Equal(t, FourPlus, res.Get("D").Bucket)
	assert.InDelta(t, 0.45, res.Get("A").Percent, 1e-9)

	geo := res.Get("GEO_ONLY")
	assert.False(t, geo.HasData)
	assert.Equal(t, NonResidential, geo.Bucket)
}

func TestClassify_Dominant(t *testing.T) {
	idx, total := index(t,
		census.Row{census.CodeColumn: "C1", "bicycle": "1,200", "drovealone": "800"},
		census.Row{census.CodeColumn: "C2", "bicycle": "0", "drovealone": "0"},
	)

	res, err := Classify([]string{"C1", "C2", "C3"}, idx, total, Options{Mode: ModeDominant})
	require.NoError(t, err)

	assert.Equal(t, census.Bicycle, res.Get("C1").Dominant)
	assert.Equal(t, 2000, res.Get("C1").Record.Total)
	assert.Equal(t, None, res.Get("C2").Dominant)
	assert.True(t, res.Get("C2").HasData)
	assert.Equal(t, None, res.Get("C3").Dominant)
	assert.False(t, res.Get("C3").HasData)
}

func TestClassify_ZeroCitywideTotal(t *testing.T) {
	idx, total := index(t, bikeRow("A", "0"), bikeRow("B", "0"))
	require.Zero(t, total)

	_, err := Classify([]string{"A", "B"}, idx, total, Options{Mode: ModePercentage, Designated: census.Bicycle})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDivisionByZero))
}

func TestClassify_ZeroTotalWithoutDataIsNotAnError(t *testing.T) {
	idx, total := index(t, bikeRow("A", "0"))

	res, err := Classify([]string{"X", "Y"}, idx, total, Options{Mode: ModePercentage, Designated: census.Bicycle})
	require.NoError(t, err)
	assert.Equal(t, NonResidential, res.Get("X").Bucket)
}

func TestClassify_DoesNotMutateIndex(t *testing.T) {
	idx, total := index(t, bikeRow("A", "10"), bikeRow("B", "30"))
	before, _ := idx.Get("A")

	_, err := Classify(idx.Codes(), idx, total, Options{Mode: ModePercentage, Designated: census.Bicycle})
	require.NoError(t, err)

	after, _ := idx.Get("A")
	assert.Equal(t, before, after)
	assert.Equal(t, 2, idx.Len())
}

func TestClassify_UnknownMode(t *testing.T) {
	idx, total := index(t, bikeRow("A", "10"))

	_, err := Classify([]string{"A"}, idx, total, Options{Mode: "heatmap"})
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("percentage")
	require.NoError(t, err)
	assert.Equal(t, ModePercentage, m)

	_, err = ParseMode("pie")
	assert.Error(t, err)
}
