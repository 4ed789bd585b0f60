package contract

import (
	"testing"
	"time"

	"github.com/epiforge/epitrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		LinelistPathStr: "cases.csv",
		Interval:        7,
		Level:           0.95,
		MinWindow:       2,
		Precision:       3,
		Output:          "text",
		Color:           "yes",
		WindowStart:     -1,
		WindowEnd:       -1,
		CandidateStart:  -1,
		CandidateEnd:    -1,
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	input := validInput()

	err := ProcessAndValidate(cfg, input)

	require.NoError(t, err)
	assert.Equal(t, "cases.csv", cfg.LinelistPath)
	assert.Equal(t, DefaultDateColumn, cfg.DateColumn)
	assert.Equal(t, DefaultDateFormat, cfg.DateFormat)
	assert.Equal(t, 7, cfg.IntervalDays)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.NoneBackend, cfg.StoreBackend)
	assert.True(t, cfg.UseColors)
	assert.Nil(t, cfg.Window)
	assert.Nil(t, cfg.Candidates)
	assert.True(t, cfg.From.IsZero())
}

func TestProcessAndValidateMissingLinelist(t *testing.T) {
	input := validInput()
	input.LinelistPathStr = ""

	err := ProcessAndValidate(&Config{}, input)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "linelist path")
}

func TestProcessAndValidateBadInterval(t *testing.T) {
	input := validInput()
	input.Interval = 0

	err := ProcessAndValidate(&Config{}, input)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "interval")
}

func TestProcessAndValidateBadLevel(t *testing.T) {
	for _, level := range []float64{0, 1, -0.2, 1.5} {
		input := validInput()
		input.Level = level

		err := ProcessAndValidate(&Config{}, input)
		assert.Error(t, err)
	}
}

func TestProcessAndValidateBadOutputMode(t *testing.T) {
	input := validInput()
	input.Output = "xml"

	err := ProcessAndValidate(&Config{}, input)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output mode")
}

func TestProcessAndValidateDateBounds(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.From = "2024-01-01"
	input.To = "2024-03-31"

	err := ProcessAndValidate(cfg, input)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.From)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), cfg.To)
}

func TestProcessAndValidateReversedDateBounds(t *testing.T) {
	input := validInput()
	input.From = "2024-03-31"
	input.To = "2024-01-01"

	err := ProcessAndValidate(&Config{}, input)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "precedes")
}

func TestProcessAndValidateWindow(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.WindowStart = 2
	input.WindowEnd = 9

	err := ProcessAndValidate(cfg, input)

	require.NoError(t, err)
	require.NotNil(t, cfg.Window)
	assert.Equal(t, schema.Window{Start: 2, End: 9}, *cfg.Window)
}

func TestProcessAndValidateHalfOpenWindow(t *testing.T) {
	input := validInput()
	input.WindowStart = 2

	err := ProcessAndValidate(&Config{}, input)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "together")
}

func TestProcessAndValidateReversedWindow(t *testing.T) {
	input := validInput()
	input.CandidateStart = 9
	input.CandidateEnd = 2

	err := ProcessAndValidate(&Config{}, input)

	assert.Error(t, err)
}

func TestProcessAndValidateStoreBackend(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.StoreBackend = "sqlite"

	err := ProcessAndValidate(cfg, input)

	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
}

func TestProcessAndValidateServerBackendNeedsConnect(t *testing.T) {
	input := validInput()
	input.StoreBackend = "mysql"

	err := ProcessAndValidate(&Config{}, input)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store-db-connect")
}

func TestProcessAndValidatePrecisionClamped(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.Precision = 99

	err := ProcessAndValidate(cfg, input)

	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Precision)
}

func TestParseYesNo(t *testing.T) {
	assert.True(t, parseYesNo("yes", false))
	assert.True(t, parseYesNo("TRUE", false))
	assert.True(t, parseYesNo("1", false))
	assert.False(t, parseYesNo("no", true))
	assert.False(t, parseYesNo("off", true))
	assert.True(t, parseYesNo("gibberish", true))
	assert.False(t, parseYesNo("", false))
}

func TestConfigClone(t *testing.T) {
	w := &schema.Window{Start: 1, End: 5}
	cfg := &Config{Group: "west", Window: w}

	clone := cfg.Clone()
	clone.Window.End = 9
	clone.Group = "east"

	assert.Equal(t, 5, cfg.Window.End)
	assert.Equal(t, "west", cfg.Group)
}
