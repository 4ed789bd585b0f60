package parquet

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epiforge/epitrend/schema"
)

func sampleTable() *schema.IncidenceTable {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &schema.IncidenceTable{
		Bins:   []time.Time{start, start.AddDate(0, 0, 7)},
		Width:  7,
		Groups: []string{"west", "east"},
		Counts: [][]int{{4, 2}, {8, 1}},
	}
}

func TestConvertIncidenceTable(t *testing.T) {
	rows := ConvertIncidenceTable(sampleTable())

	require.Len(t, rows, 4)
	assert.Equal(t, int32(0), rows[0].BinIndex)
	assert.Equal(t, "west", rows[0].Group)
	assert.Equal(t, int32(4), rows[0].Count)
	assert.Equal(t, int32(1), rows[3].BinIndex)
	assert.Equal(t, "east", rows[3].Group)
	assert.Equal(t, int32(1), rows[3].Count)
}

func TestConvertFittedModelsOptionalFields(t *testing.T) {
	lower, upper, doubling := 0.5, 0.9, 1.0
	conclusive := schema.FittedModel{
		Group:        "west",
		Window:       schema.Window{Start: 0, End: 4},
		Rate:         0.693,
		RateLower:    &lower,
		RateUpper:    &upper,
		Level:        0.95,
		RSquared:     0.99,
		Conclusive:   true,
		DoublingTime: &doubling,
	}
	inconclusive := schema.FittedModel{Group: "east", Level: 0.95}

	rows := ConvertFittedModels([]schema.FittedModel{conclusive, inconclusive}, schema.FullSegment, nil)

	require.Len(t, rows, 2)
	assert.Equal(t, string(schema.FullSegment), rows[0].Segment)
	require.NotNil(t, rows[0].RateLower)
	assert.Equal(t, 0.5, *rows[0].RateLower)
	assert.Nil(t, rows[0].HalvingTime)
	assert.Nil(t, rows[0].SplitBin)

	assert.Nil(t, rows[1].RateLower)
	assert.Nil(t, rows[1].DoublingTime)
}

func TestConvertSplitFits(t *testing.T) {
	splits := []schema.SplitFit{
		{
			Group:    "west",
			SplitBin: 4,
			Before:   schema.FittedModel{Group: "west", Window: schema.Window{Start: 0, End: 4}, Rate: 0.7},
			After:    schema.FittedModel{Group: "west", Window: schema.Window{Start: 4, End: 8}, Rate: -0.7},
			Score:    1.98,
		},
	}

	rows := ConvertSplitFits(splits)

	require.Len(t, rows, 2)
	assert.Equal(t, string(schema.GrowthSegment), rows[0].Segment)
	assert.Equal(t, string(schema.DecaySegment), rows[1].Segment)
	require.NotNil(t, rows[0].SplitBin)
	require.NotNil(t, rows[1].SplitBin)
	assert.Equal(t, int32(4), *rows[0].SplitBin)
	assert.Equal(t, *rows[0].SplitBin, *rows[1].SplitBin)
	assert.Greater(t, rows[0].Rate, 0.0)
	assert.Less(t, rows[1].Rate, 0.0)
}

func TestConvertRunRecords(t *testing.T) {
	end := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	durationMs := int32(42)
	params := `{"interval":7}`
	runs := []schema.RunRecord{
		{RunID: 1, StartTime: end.Add(-time.Minute), EndTime: &end, RunDurationMs: &durationMs, TotalFits: 3, Source: "cases.csv", ConfigParams: &params},
		{RunID: 2, StartTime: end, TotalFits: 0, Source: "cases.csv"},
	}

	rows := ConvertRunRecords(runs)

	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].RunID)
	require.NotNil(t, rows[0].RunDurationMs)
	assert.Equal(t, int32(42), *rows[0].RunDurationMs)
	assert.Nil(t, rows[1].EndTime)
	assert.Nil(t, rows[1].ConfigParams)
}

func TestWriteIncidenceParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.parquet")
	rows := ConvertIncidenceTable(sampleTable())

	require.NoError(t, WriteIncidenceParquet(rows, path))

	readBack, err := parquet.ReadFile[IncidenceRow](path)
	require.NoError(t, err)
	require.Len(t, readBack, len(rows))
	assert.Equal(t, rows[0].Group, readBack[0].Group)
	assert.Equal(t, rows[3].Count, readBack[3].Count)
}
