package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/epiforge/epitrend/schema"
)

// Default values for configuration.
const (
	DefaultIntervalDays = 7
	DefaultLevel        = 0.95
	DefaultMinWindow    = 2
	DefaultPrecision    = 3
	DefaultDateColumn   = "date"
	DefaultDateFormat   = time.DateOnly
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration for an epitrend invocation.
// This struct remains the "final, validated" config.
type Config struct {
	LinelistPath string
	DateColumn   string
	GroupColumn  string
	DateFormat   string

	IntervalDays int
	From         time.Time // zero = derive from data
	To           time.Time // zero = derive from data
	SortGroups   bool

	Group      string // empty = every group in the table
	Window     *schema.Window
	Candidates *schema.Window
	Level      float64
	MinWindow  int
	Workers    int

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	UseColors  bool
	Width      int // Terminal width override (0 = auto-detect)

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	LinelistPathStr string

	DateColumn  string `mapstructure:"date-column"`
	GroupColumn string `mapstructure:"group-column"`
	DateFormat  string `mapstructure:"date-format"`

	Interval   int    `mapstructure:"interval"`
	From       string `mapstructure:"from"`
	To         string `mapstructure:"to"`
	SortGroups bool   `mapstructure:"sort-groups"`

	Group          string  `mapstructure:"group"`
	WindowStart    int     `mapstructure:"window-start"`
	WindowEnd      int     `mapstructure:"window-end"`
	CandidateStart int     `mapstructure:"candidate-start"`
	CandidateEnd   int     `mapstructure:"candidate-end"`
	Level          float64 `mapstructure:"level"`
	MinWindow      int     `mapstructure:"min-window"`
	Workers        int     `mapstructure:"workers"`

	Precision  int    `mapstructure:"precision"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Color      string `mapstructure:"color"`
	Width      int    `mapstructure:"width"`

	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Window != nil {
		w := *c.Window
		clone.Window = &w
	}
	if c.Candidates != nil {
		w := *c.Candidates
		clone.Candidates = &w
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDateBounds(cfg, input); err != nil {
		return err
	}
	if err := processWindows(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs copies over scalar settings with range checks.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	if input.LinelistPathStr == "" {
		return fmt.Errorf("linelist path is required")
	}
	cfg.LinelistPath = input.LinelistPathStr

	cfg.DateColumn = input.DateColumn
	if cfg.DateColumn == "" {
		cfg.DateColumn = DefaultDateColumn
	}
	cfg.GroupColumn = input.GroupColumn
	cfg.DateFormat = input.DateFormat
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}

	if input.Interval < 1 {
		return fmt.Errorf("interval must be at least 1 day: got %d", input.Interval)
	}
	cfg.IntervalDays = input.Interval
	cfg.SortGroups = input.SortGroups
	cfg.Group = input.Group

	if input.Level <= 0 || input.Level >= 1 {
		return fmt.Errorf("confidence level must be in (0,1): got %v", input.Level)
	}
	cfg.Level = input.Level

	if input.MinWindow < DefaultMinWindow {
		return fmt.Errorf("min-window must be at least %d bins: got %d", DefaultMinWindow, input.MinWindow)
	}
	cfg.MinWindow = input.MinWindow

	cfg.Workers = input.Workers
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}

	cfg.Precision = input.Precision
	if cfg.Precision < 1 {
		cfg.Precision = 1
	}
	if cfg.Precision > 6 {
		cfg.Precision = 6
	}

	out := schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[out]; !ok {
		return fmt.Errorf("invalid output mode %q: must be text, csv, json or parquet", input.Output)
	}
	cfg.Output = out
	cfg.OutputFile = input.OutputFile
	cfg.UseColors = parseYesNo(input.Color, true)
	cfg.Width = input.Width

	backend := schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidStoreBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend %q: must be sqlite, mysql, postgresql or none", input.StoreBackend)
	}
	if err := ValidateStoreConnect(backend, input.StoreDBConnect); err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = input.StoreDBConnect

	return nil
}

// processDateBounds parses optional explicit aggregation bounds.
func processDateBounds(cfg *Config, input *ConfigRawInput) error {
	if input.From != "" {
		t, err := time.Parse(cfg.DateFormat, input.From)
		if err != nil {
			return fmt.Errorf("invalid --from date %q: %w", input.From, err)
		}
		cfg.From = t
	}
	if input.To != "" {
		t, err := time.Parse(cfg.DateFormat, input.To)
		if err != nil {
			return fmt.Errorf("invalid --to date %q: %w", input.To, err)
		}
		cfg.To = t
	}
	if !cfg.From.IsZero() && !cfg.To.IsZero() && cfg.To.Before(cfg.From) {
		return fmt.Errorf("--to date %s precedes --from date %s", input.To, input.From)
	}
	return nil
}

// processWindows parses the optional fit window and candidate range. A value
// of -1 leaves the corresponding edge open.
func processWindows(cfg *Config, input *ConfigRawInput) error {
	w, err := parseWindow(input.WindowStart, input.WindowEnd, "window")
	if err != nil {
		return err
	}
	cfg.Window = w

	c, err := parseWindow(input.CandidateStart, input.CandidateEnd, "candidate")
	if err != nil {
		return err
	}
	cfg.Candidates = c
	return nil
}

func parseWindow(start, end int, name string) (*schema.Window, error) {
	if start < 0 && end < 0 {
		return nil, nil
	}
	if start < 0 || end < 0 {
		return nil, fmt.Errorf("both --%s-start and --%s-end must be set together", name, name)
	}
	if end < start {
		return nil, fmt.Errorf("--%s-end %d precedes --%s-start %d", name, end, name, start)
	}
	return &schema.Window{Start: start, End: end}, nil
}

// parseYesNo interprets yes/no style flag values leniently.
func parseYesNo(v string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1", "y", "on":
		return true
	case "no", "false", "0", "n", "off":
		return false
	default:
		return fallback
	}
}
