package core

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/epiforge/epitrend/schema"
)

// MinWindowBins is the smallest window either side of a split may have.
const MinWindowBins = 2

// scoreEpsilon bounds the tolerance when two candidate scores are compared;
// exact floating ties fall through to the peak-proximity rule.
const scoreEpsilon = 1e-9

// SplitOptions controls the changepoint search.
type SplitOptions struct {
	// Candidates optionally restricts the candidate split bins. The default
	// is the full range minus MinWindowBins bins on each edge.
	Candidates *schema.Window

	// MinWindow is the minimum number of bins each side of a split must
	// cover. Values below MinWindowBins are raised to it.
	MinWindow int

	// Level is the confidence level passed through to both segment fits.
	Level float64

	// Workers caps the number of concurrent candidate evaluations.
	// Zero means GOMAXPROCS.
	Workers int
}

// candidateFit is the outcome of evaluating one candidate split bin.
type candidateFit struct {
	split  int
	before *schema.FittedModel
	after  *schema.FittedModel
	score  float64
	ok     bool
}

// FindSplit searches for the bin that best partitions a group's series into
// a rising and a falling log-linear segment. Every candidate is fitted on
// both sides; candidates where either side has insufficient data are
// skipped. The best candidate maximizes r_squared(before)+r_squared(after),
// with ties broken by proximity to the empirical peak bin and then by the
// lowest bin index, so selection is deterministic regardless of worker count.
func FindSplit(table *schema.IncidenceTable, group string, opts SplitOptions) (*schema.SplitFit, error) {
	if table.GroupIndex(group) < 0 {
		return nil, fmt.Errorf("unknown group %q", group)
	}

	minWindow := opts.MinWindow
	if minWindow < MinWindowBins {
		minWindow = MinWindowBins
	}

	first, last := 0, len(table.Bins)-1
	lo := first + minWindow - 1
	hi := last - minWindow + 1
	if opts.Candidates != nil {
		if opts.Candidates.Start > lo {
			lo = opts.Candidates.Start
		}
		if opts.Candidates.End < hi {
			hi = opts.Candidates.End
		}
	}
	if lo > hi {
		return nil, fmt.Errorf("%w: series of %d bin(s) leaves no candidates", ErrNoValidSplit, len(table.Bins))
	}

	results := make([]candidateFit, hi-lo+1)
	jobs := make(chan int)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(results) {
		workers = len(results)
	}

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for s := range jobs {
				results[s-lo] = evaluateCandidate(table, group, s, first, last, opts.Level)
			}
		})
	}
	for s := lo; s <= hi; s++ {
		jobs <- s
	}
	close(jobs)
	wg.Wait()

	peak := table.PeakBin(group)
	best := -1
	for i, r := range results {
		if !r.ok {
			continue
		}
		if best < 0 || betterCandidate(r, results[best], peak) {
			best = i
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w: %d candidate(s) evaluated", ErrNoValidSplit, len(results))
	}

	chosen := results[best]
	return &schema.SplitFit{
		Group:     group,
		SplitBin:  chosen.split,
		SplitDate: table.BinDate(chosen.split),
		Before:    *chosen.before,
		After:     *chosen.after,
		Score:     chosen.score,
	}, nil
}

// evaluateCandidate fits the growth and decay segments around one split bin.
// Both windows share the split bin. Insufficient data on either side marks
// the candidate invalid instead of failing the search.
func evaluateCandidate(table *schema.IncidenceTable, group string, split, first, last int, level float64) candidateFit {
	before, err := Fit(table, group, FitOptions{
		Window: &schema.Window{Start: first, End: split},
		Level:  level,
	})
	if err != nil {
		return candidateFit{split: split}
	}
	after, err := Fit(table, group, FitOptions{
		Window: &schema.Window{Start: split, End: last},
		Level:  level,
	})
	if err != nil {
		return candidateFit{split: split}
	}
	return candidateFit{
		split:  split,
		before: before,
		after:  after,
		score:  before.RSquared + after.RSquared,
		ok:     true,
	}
}

// betterCandidate reports whether a should replace b as the current best.
func betterCandidate(a, b candidateFit, peak int) bool {
	if a.score > b.score+scoreEpsilon {
		return true
	}
	if a.score < b.score-scoreEpsilon {
		return false
	}
	da, db := absInt(a.split-peak), absInt(b.split-peak)
	if da != db {
		return da < db
	}
	return a.split < b.split
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// IsInsufficientData reports whether an error is the insufficient-data kind.
// Callers iterating groups use it to distinguish skippable series from hard
// failures.
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
