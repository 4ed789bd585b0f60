//go:build integration

// Package integration contains integration tests for epitrend.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
// Or use: make test-integration
package integration

import (
	"bytes"
	"encoding/csv"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEpitrendCountsVerification runs epitrend counts and verifies the binned
// totals against a direct count of the raw linelist.
func TestEpitrendCountsVerification(t *testing.T) {
	linelist, expected := writeVerificationLinelist(t)

	// Build epitrend binary
	epitrendPath, err := filepath.Abs(filepath.Join(t.TempDir(), "epitrend"))
	require.NoError(t, err)
	buildCmd := exec.Command("go", "build", "-o", epitrendPath, ".")
	buildCmd.Dir = ".." // Project root
	err = buildCmd.Run()
	require.NoError(t, err)

	// Run epitrend counts --output csv
	cmd := exec.Command(epitrendPath, "counts", linelist, "--group-column", "region", "--output", "csv")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	err = cmd.Run()
	require.NoError(t, err)

	// Parse output to extract (bin_start, group) -> count
	got := parseCountsOutput(t, stdout.String())

	// Every expected cell must appear with the same count, and nothing extra
	for key, count := range expected {
		t.Run(key, func(t *testing.T) {
			assert.Equal(t, count, got[key], "count mismatch for %s", key)
		})
	}
	for key, count := range got {
		if count > 0 {
			assert.Contains(t, expected, key, "unexpected nonzero cell %s", key)
		}
	}
}

// writeVerificationLinelist writes a randomized-looking linelist and returns
// its path along with the expected weekly counts keyed by "bin_start/group".
func writeVerificationLinelist(t *testing.T) (string, map[string]int) {
	t.Helper()

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC) // a Monday
	cells := []struct {
		week  int
		day   int
		group string
		n     int
	}{
		{0, 0, "west", 3},
		{0, 5, "east", 1},
		{1, 2, "west", 5},
		{1, 6, "east", 4},
		{2, 1, "west", 2},
		{3, 3, "east", 7},
	}

	lines := "date,region\n"
	expected := make(map[string]int)
	for _, c := range cells {
		day := start.AddDate(0, 0, 7*c.week+c.day)
		for range c.n {
			lines += day.Format(time.DateOnly) + "," + c.group + "\n"
		}
		binStart := start.AddDate(0, 0, 7*c.week)
		expected[binStart.Format(time.DateOnly)+"/"+c.group] += c.n
	}

	path := filepath.Join(t.TempDir(), "cases.csv")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path, expected
}

// parseCountsOutput extracts (bin_start, group) -> count from CSV output.
func parseCountsOutput(t *testing.T, output string) map[string]int {
	t.Helper()

	reader := csv.NewReader(strings.NewReader(output))
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	counts := make(map[string]int)
	for _, rec := range records[1:] {
		n, err := strconv.Atoi(rec[col["count"]])
		require.NoError(t, err)
		counts[rec[col["bin_start"]]+"/"+rec[col["group"]]] += n
	}
	return counts
}
