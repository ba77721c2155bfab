package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyaudit/internal/ui/theme"
)

// Picker is a labelled row that cycles through a fixed set of options
// with left and right.
type Picker struct {
	Label   string
	Options []string
	Index   int
}

// NewPicker creates a picker on the option equal to current, or the
// first one.
func NewPicker(label string, options []string, current string) Picker {
	p := Picker{Label: label, Options: options}
	for i, o := range options {
		if o == current {
			p.Index = i
		}
	}
	return p
}

// Update cycles the selection.
func (p Picker) Update(msg tea.Msg) Picker {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(p.Options) == 0 {
		return p
	}
	switch kmsg.String() {
	case "left", "h":
		p.Index = (p.Index - 1 + len(p.Options)) % len(p.Options)
	case "right", "l", "space":
		p.Index = (p.Index + 1) % len(p.Options)
	}
	return p
}

// Value returns the selected option.
func (p Picker) Value() string {
	if len(p.Options) == 0 {
		return ""
	}
	return p.Options[p.Index]
}

// View renders the row. Active rows show the cycling arrows.
func (p Picker) View(active bool) string {
	label := fmt.Sprintf("%-12s", p.Label)
	if !active {
		return theme.Subtitle.Render("  "+label) + theme.Unselected.Render("  "+p.Value())
	}
	return theme.Selected.Render("▸ "+label) + theme.Selected.Render("◂ "+p.Value()+" ▸")
}
