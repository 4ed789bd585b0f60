package outwriter

import (
	"os"

	"github.com/epiforge/epitrend/internal/contract"
	"golang.org/x/term"
)

// GetMaxGroupWidth calculates the maximum width for group labels in table
// output based on terminal width.
func GetMaxGroupWidth(cfg *contract.Config) int {
	termWidth := cfg.Width

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default for narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the numeric columns, borders and padding.
	available := termWidth - 60
	if available < 8 {
		return 8
	}
	if available > 40 {
		return 40
	}
	return available
}

// truncateLabel shortens a group label to fit the table, keeping a trailing
// ellipsis marker.
func truncateLabel(label string, maxWidth int) string {
	if len(label) <= maxWidth {
		return label
	}
	if maxWidth <= 3 {
		return label[:maxWidth]
	}
	return label[:maxWidth-3] + "..."
}
