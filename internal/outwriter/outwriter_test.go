package outwriter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/epiforge/epitrend/internal/contract"
	"github.com/epiforge/epitrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *schema.IncidenceTable {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &schema.IncidenceTable{
		Bins:   []time.Time{start, start.AddDate(0, 0, 7)},
		Width:  7,
		Groups: []string{"west", "east"},
		Counts: [][]int{{4, 2}, {8, 1}},
	}
}

func testModel() schema.FittedModel {
	lower, upper := 0.5, 0.9
	doubling := 1.0
	return schema.FittedModel{
		Group:        "west",
		Window:       schema.Window{Start: 0, End: 1},
		Rate:         0.693,
		StdErr:       0.05,
		RateLower:    &lower,
		RateUpper:    &upper,
		Level:        0.95,
		RSquared:     0.99,
		Conclusive:   true,
		DoublingTime: &doubling,
	}
}

func TestCreateFormatters(t *testing.T) {
	fmtFloat, fmtOptional := createFormatters(2)

	assert.Equal(t, "3.14", fmtFloat(3.14159))
	assert.Equal(t, "n/a", fmtOptional(nil))

	v := 1.5
	assert.Equal(t, "1.50", fmtOptional(&v))
}

func TestFormatCI(t *testing.T) {
	fmtFloat, _ := createFormatters(3)

	assert.Equal(t, "[0.500, 0.900]", formatCI(testModel(), fmtFloat))

	bare := schema.FittedModel{}
	assert.Equal(t, "n/a", formatCI(bare, fmtFloat))
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short", truncateLabel("short", 10))
	assert.Equal(t, "a-very-...", truncateLabel("a-very-long-group-label", 10))
	assert.Equal(t, "ab", truncateLabel("abcdef", 2))
}

func TestGetMaxGroupWidthOverride(t *testing.T) {
	cfg := &contract.Config{Width: 200}
	assert.Equal(t, 40, GetMaxGroupWidth(cfg))

	cfg.Width = 10
	assert.Equal(t, 8, GetMaxGroupWidth(cfg))

	cfg.Width = 80
	assert.Equal(t, 20, GetMaxGroupWidth(cfg))
}

func TestWriteCSVCounts(t *testing.T) {
	var buf bytes.Buffer

	err := writeCSVCounts(&buf, testTable())

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 5) // header + 2 bins * 2 groups
	assert.Equal(t, "bin_index,bin_start,width_days,group,count", lines[0])
	assert.Equal(t, "0,2024-01-01,7,west,4", lines[1])
	assert.Equal(t, "1,2024-01-08,7,east,1", lines[4])
}

func TestWriteJSONCounts(t *testing.T) {
	var buf bytes.Buffer

	err := writeJSONCounts(&buf, testTable())

	require.NoError(t, err)
	var decoded struct {
		WidthDays int      `json:"width_days"`
		Groups    []string `json:"groups"`
		Bins      []struct {
			Index  int            `json:"index"`
			Counts map[string]int `json:"counts"`
		} `json:"bins"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 7, decoded.WidthDays)
	assert.Len(t, decoded.Bins, 2)
	assert.Equal(t, 8, decoded.Bins[1].Counts["west"])
}

func TestWriteCSVFits(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, fmtOptional := createFormatters(3)

	err := writeCSVFits(&buf, []schema.FittedModel{testModel()}, fmtFloat, fmtOptional)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "doubling_time")
	assert.Contains(t, lines[1], "Growing")
	assert.Contains(t, lines[1], "0.693")
	// halving time absent on a growing fit
	assert.True(t, strings.HasSuffix(lines[1], "n/a"))
}

func TestWriteJSONFitsAddsTrend(t *testing.T) {
	var buf bytes.Buffer

	err := writeJSONFits(&buf, []schema.FittedModel{testModel()})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"trend": "Growing"`)
}

func TestWriteCSVSplitsTwoRowsPerSplit(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(3)

	before := testModel()
	after := testModel()
	after.Rate = -0.693
	split := schema.SplitFit{
		Group:     "west",
		SplitBin:  4,
		SplitDate: time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC),
		Before:    before,
		After:     after,
		Score:     1.98,
	}

	err := writeCSVSplits(&buf, []schema.SplitFit{split}, fmtFloat)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "growth")
	assert.Contains(t, lines[2], "decay")
	assert.Contains(t, lines[1], "2024-01-29")
}

func TestWriteCountsTableRendersFooter(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Width: 120, Precision: 3}

	err := writeCountsTable(&buf, testTable(), cfg, 5*time.Millisecond)

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "west")
	assert.Contains(t, out, "2 bin(s) of 7 day(s), 15 event(s) counted, 0 excluded")
}
