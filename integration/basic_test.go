//go:build basic

package integration

import (
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEpitrendBasicCommands exercises the CLI surface end to end without any
// external services.
func TestEpitrendBasicCommands(t *testing.T) {
	linelist := writeSampleLinelist(t)

	t.Run("version", func(t *testing.T) {
		out := runForOutput(t, "version")
		assert.Contains(t, out, "Version")
	})

	t.Run("counts text", func(t *testing.T) {
		out := runForOutput(t, "counts", linelist, "--group-column", "region")
		assert.Contains(t, out, "west")
		assert.Contains(t, out, "east")
		assert.Contains(t, out, "5 bin(s) of 7 day(s)")
	})

	t.Run("counts json", func(t *testing.T) {
		out := runForOutput(t, "counts", linelist, "--output", "json")
		assert.Contains(t, out, `"width_days": 7`)
	})

	t.Run("fit csv", func(t *testing.T) {
		out := runForOutput(t, "fit", linelist, "--group-column", "region", "--output", "csv")
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3) // header + one fit per region
		assert.Contains(t, lines[0], "r_squared")
	})

	t.Run("split text", func(t *testing.T) {
		out := runForOutput(t, "split", linelist, "--color", "no")
		assert.Contains(t, out, "Score")
	})

	t.Run("parquet requires output file", func(t *testing.T) {
		cmd := exec.Command(getEpitrendBinary(), "counts", linelist, "--output", "parquet")
		cmd.Dir = "../"
		output, err := cmd.CombinedOutput()
		assert.Error(t, err)
		assert.Contains(t, string(output), "--output-file")
	})

	t.Run("counts parquet to file", func(t *testing.T) {
		outFile := filepath.Join(t.TempDir(), "counts.parquet")
		_ = runForOutput(t, "counts", linelist, "--output", "parquet", "--output-file", outFile)
		info, err := filepath.Glob(outFile)
		require.NoError(t, err)
		assert.Len(t, info, 1)
	})
}

// runForOutput runs one epitrend command and fails the test on error.
func runForOutput(t *testing.T, args ...string) string {
	t.Helper()
	cmd := exec.Command(getEpitrendBinary(), args...)
	cmd.Dir = "../"
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "command failed: %s\noutput: %s", cmd.String(), string(output))
	return string(output)
}
