package core

import (
	"math"
	"testing"
	"time"

	"github.com/epiforge/epitrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableOf builds a daily single-group incidence table from raw counts.
func tableOf(counts ...int) *schema.IncidenceTable {
	bins := make([]time.Time, len(counts))
	rows := make([][]int, len(counts))
	for i, c := range counts {
		bins[i] = day(2024, 1, 1).AddDate(0, 0, i)
		rows[i] = []int{c}
	}
	return &schema.IncidenceTable{
		Bins:   bins,
		Width:  1,
		Groups: []string{schema.ImplicitGroup},
		Counts: rows,
	}
}

func TestFitDoublingSeries(t *testing.T) {
	// Counts double each interval; large values keep the +1 offset negligible
	table := tableOf(1000, 2000, 4000, 8000, 16000)

	model, err := Fit(table, schema.ImplicitGroup, FitOptions{})

	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, model.Rate, 0.01)
	assert.Greater(t, model.RSquared, 0.999)
	assert.True(t, model.Conclusive)
	assert.Equal(t, schema.GrowingLabel, schema.Trend(*model))

	require.NotNil(t, model.RateLower)
	require.NotNil(t, model.RateUpper)
	assert.Greater(t, *model.RateLower, 0.0)

	require.NotNil(t, model.DoublingTime)
	assert.InDelta(t, 1.0, *model.DoublingTime, 0.02)
	assert.Nil(t, model.HalvingTime)
}

func TestFitDecliningSeries(t *testing.T) {
	table := tableOf(16000, 8000, 4000, 2000, 1000)

	model, err := Fit(table, schema.ImplicitGroup, FitOptions{})

	require.NoError(t, err)
	assert.InDelta(t, -math.Ln2, model.Rate, 0.01)
	assert.True(t, model.Conclusive)
	assert.Equal(t, schema.DecliningLabel, schema.Trend(*model))

	require.NotNil(t, model.HalvingTime)
	assert.InDelta(t, 1.0, *model.HalvingTime, 0.02)
	assert.Nil(t, model.DoublingTime)
}

func TestFitFlatSeriesInconclusive(t *testing.T) {
	table := tableOf(5, 5, 5, 5, 5)

	model, err := Fit(table, schema.ImplicitGroup, FitOptions{})

	require.NoError(t, err)
	assert.InDelta(t, 0.0, model.Rate, 1e-12)
	assert.InDelta(t, 0.0, model.RSquared, 1e-12)
	assert.False(t, model.Conclusive)
	assert.Equal(t, schema.InconclusiveLabel, schema.Trend(*model))
	assert.Nil(t, model.DoublingTime)
	assert.Nil(t, model.HalvingTime)
}

func TestFitTwoBinsNoResidualDOF(t *testing.T) {
	// A two-point fit is exact; no residual degrees of freedom, no interval
	table := tableOf(10, 20)

	model, err := Fit(table, schema.ImplicitGroup, FitOptions{})

	require.NoError(t, err)
	assert.Nil(t, model.RateLower)
	assert.Nil(t, model.RateUpper)
	assert.False(t, model.Conclusive)
	assert.Nil(t, model.DoublingTime)
}

func TestFitWindowRestriction(t *testing.T) {
	// Growth then decay; the window isolates the growth phase
	table := tableOf(1000, 2000, 4000, 8000, 4000, 2000, 1000)

	model, err := Fit(table, schema.ImplicitGroup, FitOptions{
		Window: &schema.Window{Start: 0, End: 3},
	})

	require.NoError(t, err)
	assert.Equal(t, schema.Window{Start: 0, End: 3}, model.Window)
	assert.InDelta(t, math.Ln2, model.Rate, 0.01)
	assert.True(t, model.Conclusive)
}

func TestFitWindowOutOfRange(t *testing.T) {
	table := tableOf(1, 2, 3)

	cases := []schema.Window{
		{Start: -1, End: 2},
		{Start: 0, End: 3},
		{Start: 2, End: 1},
	}
	for _, w := range cases {
		_, err := Fit(table, schema.ImplicitGroup, FitOptions{Window: &w})
		assert.Error(t, err)
	}
}

func TestFitSingleBinInsufficient(t *testing.T) {
	table := tableOf(7)

	_, err := Fit(table, schema.ImplicitGroup, FitOptions{})

	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.True(t, IsInsufficientData(err))
}

func TestFitAllZeroWindowInsufficient(t *testing.T) {
	table := tableOf(0, 0, 0, 0)

	_, err := Fit(table, schema.ImplicitGroup, FitOptions{})

	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestFitUnknownGroup(t *testing.T) {
	table := tableOf(1, 2, 3)

	_, err := Fit(table, "nowhere", FitOptions{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown group")
}

func TestFitInvalidLevel(t *testing.T) {
	table := tableOf(1, 2, 3)

	for _, level := range []float64{-0.5, 1.0, 1.5} {
		_, err := Fit(table, schema.ImplicitGroup, FitOptions{Level: level})
		assert.Error(t, err)
	}
}

func TestFitLevelWidensInterval(t *testing.T) {
	table := tableOf(1000, 2100, 3900, 8100, 15800)

	narrow, err := Fit(table, schema.ImplicitGroup, FitOptions{Level: 0.80})
	require.NoError(t, err)
	wide, err := Fit(table, schema.ImplicitGroup, FitOptions{Level: 0.99})
	require.NoError(t, err)

	assert.Equal(t, narrow.Rate, wide.Rate)
	assert.Less(t, *wide.RateLower, *narrow.RateLower)
	assert.Greater(t, *wide.RateUpper, *narrow.RateUpper)
}

func TestFitIsIdempotent(t *testing.T) {
	table := tableOf(1000, 2000, 4000, 8000)

	first, err := Fit(table, schema.ImplicitGroup, FitOptions{})
	require.NoError(t, err)
	second, err := Fit(table, schema.ImplicitGroup, FitOptions{})
	require.NoError(t, err)

	assert.Equal(t, first.Rate, second.Rate)
	assert.Equal(t, first.RSquared, second.RSquared)
	assert.Equal(t, 1000, table.Counts[0][0]) // table untouched
}
