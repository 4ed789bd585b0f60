package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/epiforge/epitrend/internal/contract"
	"github.com/epiforge/epitrend/internal/linelist"
	"github.com/epiforge/epitrend/internal/outwriter"
	"github.com/epiforge/epitrend/schema"
)

// GetCountsResult loads the configured linelist and aggregates it into an
// incidence table.
func GetCountsResult(cfg *contract.Config) (*schema.IncidenceTable, error) {
	list, err := linelist.Load(cfg.LinelistPath, linelist.Options{
		DateColumn:  cfg.DateColumn,
		GroupColumn: cfg.GroupColumn,
		DateFormat:  cfg.DateFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load linelist: %w", err)
	}

	bounds, err := resolveConfigBounds(list.Dates, cfg)
	if err != nil {
		return nil, err
	}

	table, err := Aggregate(list.Dates, list.Groups, AggregateOptions{
		Width:      cfg.IntervalDays,
		Bounds:     bounds,
		SortGroups: cfg.SortGroups,
	})
	if err != nil {
		return nil, err
	}

	if table.Excluded > 0 {
		contract.LogWarn(fmt.Sprintf("%d event(s) outside date bounds were excluded", table.Excluded), nil)
	}
	return table, nil
}

// resolveConfigBounds merges explicit --from/--to settings with the observed
// data range. Setting only one edge derives the other from the data.
func resolveConfigBounds(dates []time.Time, cfg *contract.Config) (*DateRange, error) {
	if cfg.From.IsZero() && cfg.To.IsZero() {
		return nil, nil
	}

	minDate, maxDate := cfg.From, cfg.To
	if minDate.IsZero() || maxDate.IsZero() {
		if len(dates) == 0 {
			return nil, fmt.Errorf("%w: cannot derive the open bound", ErrEmptyInput)
		}
		lo := DayFloor(dates[0])
		hi := lo
		for _, d := range dates[1:] {
			d = DayFloor(d)
			if d.Before(lo) {
				lo = d
			}
			if d.After(hi) {
				hi = d
			}
		}
		if minDate.IsZero() {
			minDate = lo
		}
		if maxDate.IsZero() {
			maxDate = hi
		}
	}
	return &DateRange{Min: minDate, Max: maxDate}, nil
}

// selectGroups resolves the groups to analyze: the configured group when
// set, otherwise every group in the table.
func selectGroups(table *schema.IncidenceTable, cfg *contract.Config) ([]string, error) {
	if cfg.Group == "" {
		return table.Groups, nil
	}
	if table.GroupIndex(cfg.Group) < 0 {
		return nil, fmt.Errorf("unknown group %q: table has %v", cfg.Group, table.Groups)
	}
	return []string{cfg.Group}, nil
}

// GetFitResults aggregates and fits one model per selected group. When
// iterating every group, series with insufficient data are skipped with a
// warning; an explicitly requested group always fails hard.
func GetFitResults(cfg *contract.Config) ([]schema.FittedModel, *schema.IncidenceTable, error) {
	table, err := GetCountsResult(cfg)
	if err != nil {
		return nil, nil, err
	}
	groups, err := selectGroups(table, cfg)
	if err != nil {
		return nil, nil, err
	}

	models := make([]schema.FittedModel, 0, len(groups))
	for _, g := range groups {
		model, err := Fit(table, g, FitOptions{Window: cfg.Window, Level: cfg.Level})
		if err != nil {
			if cfg.Group == "" && IsInsufficientData(err) {
				contract.LogWarn(fmt.Sprintf("skipping group %q", g), err)
				continue
			}
			return nil, nil, err
		}
		models = append(models, *model)
	}
	if len(models) == 0 {
		return nil, nil, fmt.Errorf("%w: no group could be fitted", ErrInsufficientData)
	}
	return models, table, nil
}

// GetSplitResults aggregates and runs the changepoint search per selected
// group, with the same skip semantics as GetFitResults.
func GetSplitResults(cfg *contract.Config) ([]schema.SplitFit, *schema.IncidenceTable, error) {
	table, err := GetCountsResult(cfg)
	if err != nil {
		return nil, nil, err
	}
	groups, err := selectGroups(table, cfg)
	if err != nil {
		return nil, nil, err
	}

	splits := make([]schema.SplitFit, 0, len(groups))
	for _, g := range groups {
		split, err := FindSplit(table, g, SplitOptions{
			Candidates: cfg.Candidates,
			MinWindow:  cfg.MinWindow,
			Level:      cfg.Level,
			Workers:    cfg.Workers,
		})
		if err != nil {
			if cfg.Group == "" && errors.Is(err, ErrNoValidSplit) {
				contract.LogWarn(fmt.Sprintf("skipping group %q", g), err)
				continue
			}
			return nil, nil, err
		}
		splits = append(splits, *split)
	}
	if len(splits) == 0 {
		return nil, nil, fmt.Errorf("%w: no group could be split", ErrNoValidSplit)
	}
	return splits, table, nil
}

// ExecuteCounts runs the counts command end to end.
func ExecuteCounts(cfg *contract.Config, _ contract.StoreManager) error {
	start := time.Now()
	table, err := GetCountsResult(cfg)
	if err != nil {
		return err
	}
	return outwriter.PrintCountsResult(table, cfg, time.Since(start))
}

// ExecuteFit runs the fit command end to end, recording results in the run
// store when tracking is configured.
func ExecuteFit(cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	models, table, err := GetFitResults(cfg)
	if err != nil {
		return err
	}
	recordRun(cfg, mgr, start, func(runID int64, store contract.RunStore) int {
		for _, m := range models {
			if err := store.RecordFit(runID, schema.FullSegment, m, nil); err != nil {
				contract.LogWarn("failed to record fit", err)
			}
		}
		return len(models)
	})
	return outwriter.PrintFitResults(models, table, cfg, time.Since(start))
}

// ExecuteSplit runs the split command end to end, recording both segments of
// every split when tracking is configured.
func ExecuteSplit(cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	splits, table, err := GetSplitResults(cfg)
	if err != nil {
		return err
	}
	recordRun(cfg, mgr, start, func(runID int64, store contract.RunStore) int {
		for _, s := range splits {
			bin := int32(s.SplitBin)
			if err := store.RecordFit(runID, schema.GrowthSegment, s.Before, &bin); err != nil {
				contract.LogWarn("failed to record growth fit", err)
			}
			if err := store.RecordFit(runID, schema.DecaySegment, s.After, &bin); err != nil {
				contract.LogWarn("failed to record decay fit", err)
			}
		}
		return 2 * len(splits)
	})
	return outwriter.PrintSplitResults(splits, table, cfg, time.Since(start))
}

// recordRun wraps optional run tracking. Tracking failures degrade to
// warnings; they never fail the analysis itself.
func recordRun(cfg *contract.Config, mgr contract.StoreManager, start time.Time, record func(int64, contract.RunStore) int) {
	if mgr == nil {
		return
	}
	store := mgr.GetRunStore()
	if store == nil {
		return
	}

	params := map[string]any{
		"interval":   cfg.IntervalDays,
		"level":      cfg.Level,
		"group":      cfg.Group,
		"min_window": cfg.MinWindow,
	}
	runID, err := store.BeginRun(start, cfg.LinelistPath, params)
	if err != nil {
		contract.LogWarn("run tracking initialization failed", err)
		return
	}
	total := record(runID, store)
	if err := store.EndRun(runID, time.Now(), total); err != nil {
		contract.LogWarn("failed to finalize run tracking", err)
	}
}
