package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/ui/theme"
)

// ChoiceList lets the user pick one labelled choice of an objective
// question. Chosen holds the label last picked, "" when none.
type ChoiceList struct {
	Choices []quiz.Choice
	Cursor  int
	Chosen  string
}

// NewChoiceList creates a list with the cursor on chosen, if present.
func NewChoiceList(choices []quiz.Choice, chosen string) ChoiceList {
	c := ChoiceList{Choices: choices, Chosen: chosen}
	for i, ch := range choices {
		if strings.EqualFold(ch.Label, chosen) {
			c.Cursor = i
		}
	}
	return c
}

// Update handles navigation. It reports true when a choice was picked,
// either with enter or by typing its label.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
		return c, false
	case "down", "j":
		if c.Cursor < len(c.Choices)-1 {
			c.Cursor++
		}
		return c, false
	case "enter":
		if len(c.Choices) == 0 {
			return c, false
		}
		c.Chosen = c.Choices[c.Cursor].Label
		return c, true
	}

	for i, ch := range c.Choices {
		if strings.EqualFold(ch.Label, key) {
			c.Cursor = i
			c.Chosen = ch.Label
			return c, true
		}
	}
	return c, false
}

// View renders the choices, marking the cursor and the picked label.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, ch := range c.Choices {
		prefix := "  "
		if i == c.Cursor {
			prefix = "▸ "
		}
		mark := " "
		if strings.EqualFold(ch.Label, c.Chosen) {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, ch.Label, ch.Text)

		switch {
		case i == c.Cursor:
			b.WriteString(theme.Selected.Render(line))
		case mark != " ":
			b.WriteString(theme.Label.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
