package components

import (
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyaudit/internal/ui/theme"
)

// TextInput is a labelled single-line input.
type TextInput struct {
	Model textinput.Model
	Label string
}

// NewTextInput creates a blurred input. charLimit 0 means no limit.
func NewTextInput(label, placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = charLimit
	return TextInput{Model: ti, Label: label}
}

// Focus focuses the input and returns the cursor blink command.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input takes key presses.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update forwards msg to the input when it is focused.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if !t.Model.Focused() {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label above the input.
func (t TextInput) View() string {
	return labelStyle(t.Model.Focused()).Render(t.Label) + "\n" + t.Model.View()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}

// TextArea is a labelled multi-line input.
type TextArea struct {
	Model textarea.Model
	Label string
}

// NewTextArea creates a blurred text area of the given height.
func NewTextArea(label, placeholder string, height int) TextArea {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(height)
	ta.Blur()
	return TextArea{Model: ta, Label: label}
}

// Focus focuses the area and returns the cursor blink command.
func (t *TextArea) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextArea) Blur() {
	t.Model.Blur()
}

// SetWidth resizes the area.
func (t *TextArea) SetWidth(w int) {
	t.Model.SetWidth(w)
}

// Update forwards msg to the area when it is focused.
func (t TextArea) Update(msg tea.Msg) (TextArea, tea.Cmd) {
	if !t.Model.Focused() {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label above the area.
func (t TextArea) View() string {
	return labelStyle(t.Model.Focused()).Render(t.Label) + "\n" + t.Model.View()
}

// Value returns the current text.
func (t TextArea) Value() string {
	return t.Model.Value()
}

func labelStyle(focused bool) lipgloss.Style {
	if focused {
		return theme.Selected
	}
	return theme.Subtitle
}
