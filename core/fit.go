package core

import (
	"fmt"
	"math"

	"github.com/epiforge/epitrend/schema"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultLevel is the confidence level used when none is configured.
const DefaultLevel = 0.95

// degenerateVariance is the threshold below which a sum of squares is
// treated as zero.
const degenerateVariance = 1e-12

// FitOptions controls a single log-linear fit.
type FitOptions struct {
	// Window optionally restricts the fit to an inclusive bin range.
	// The default is the full table range.
	Window *schema.Window

	// Level is the confidence level for the rate interval, (0,1).
	// Zero means DefaultLevel.
	Level float64
}

// Fit runs an ordinary least-squares regression of log(count+1) against bin
// index for one group's series and returns the fitted model. The input table
// is never mutated.
func Fit(table *schema.IncidenceTable, group string, opts FitOptions) (*schema.FittedModel, error) {
	if table.GroupIndex(group) < 0 {
		return nil, fmt.Errorf("unknown group %q", group)
	}

	level := opts.Level
	if level == 0 {
		level = DefaultLevel
	}
	if level <= 0 || level >= 1 {
		return nil, fmt.Errorf("confidence level must be in (0,1): got %v", level)
	}

	window := schema.Window{Start: 0, End: len(table.Bins) - 1}
	if opts.Window != nil {
		window = *opts.Window
	}
	if window.Start < 0 || window.End >= len(table.Bins) || window.Start > window.End {
		return nil, fmt.Errorf("window [%d,%d] outside table range [0,%d]",
			window.Start, window.End, len(table.Bins)-1)
	}

	n := window.Bins()
	if n < 2 {
		return nil, fmt.Errorf("%w: %d bin(s) in window", ErrInsufficientData, n)
	}

	series := table.Series(group)
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	nonzero := false
	for b := window.Start; b <= window.End; b++ {
		if series[b] > 0 {
			nonzero = true
		}
		xs = append(xs, float64(b))
		ys = append(ys, math.Log1p(series[b]))
	}
	if !nonzero {
		return nil, fmt.Errorf("%w: all counts in window are zero", ErrInsufficientData)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	model := &schema.FittedModel{
		Group:  group,
		Window: window,
		Rate:   beta,
		Level:  level,
	}

	// Residual and total sums of squares, plus the spread of the time axis.
	var sse, sst, sxx float64
	meanX := stat.Mean(xs, nil)
	meanY := stat.Mean(ys, nil)
	for i := range xs {
		resid := ys[i] - (alpha + beta*xs[i])
		sse += resid * resid
		dy := ys[i] - meanY
		sst += dy * dy
		dx := xs[i] - meanX
		sxx += dx * dx
	}

	// A flat series carries no variance to explain; report zero rather than
	// the 0/0 that the textbook formula would produce.
	if sst > degenerateVariance {
		model.RSquared = 1 - sse/sst
	}

	dof := n - 2
	if dof >= 1 {
		model.StdErr = math.Sqrt((sse / float64(dof)) / sxx)
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}
		crit := t.Quantile(0.5 + level/2)
		lower := beta - crit*model.StdErr
		upper := beta + crit*model.StdErr
		model.RateLower = &lower
		model.RateUpper = &upper
		model.Conclusive = lower > 0 || upper < 0
	}

	// Doubling and halving times stay nil unless the interval excludes zero;
	// an inconclusive rate is a valid result, not an error.
	if model.Conclusive {
		d := math.Ln2 / math.Abs(beta)
		if beta > 0 {
			model.DoublingTime = &d
		} else {
			model.HalvingTime = &d
		}
	}

	return model, nil
}
