package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/studyaudit/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a fraction in [0,1].
type ProgressBar struct {
	Label   string
	Percent float64
	Width   int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, Width: width}
}

// View renders the label, the bar and the rounded percentage.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result = theme.Body.Render(p.Label) + "  "
	}

	barWidth := max(p.Width-len([]rune(p.Label))-8, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	return result + theme.Subtitle.Render(fmt.Sprintf("  %3.0f%%", p.Percent*100))
}
