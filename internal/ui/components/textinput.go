package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/ignite/kcheck/internal/ui/theme"
)

// AnswerLimit caps a single free-text answer.
const AnswerLimit = 2000

// AnswerInput is the single-line reply box of a conversation.
type AnswerInput struct {
	Model    textinput.Model
	disabled bool
}

// NewAnswerInput creates a focused reply box.
func NewAnswerInput(placeholder string) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = AnswerLimit
	ti.Prompt = "› "
	ti.Focus()

	return AnswerInput{Model: ti}
}

// Init returns the initial command.
func (a AnswerInput) Init() tea.Cmd {
	return a.Model.Focus()
}

// Update handles messages. Key presses are dropped while disabled.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyPressMsg); ok && a.disabled {
		return a, nil
	}

	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// SetDisabled toggles whether the box accepts typing. The current text is
// kept.
func (a *AnswerInput) SetDisabled(disabled bool) {
	a.disabled = disabled
}

// Disabled reports whether typing is blocked.
func (a AnswerInput) Disabled() bool {
	return a.disabled
}

// SetWidth sets the width of the text area inside the box.
func (a *AnswerInput) SetWidth(w int) {
	a.Model.SetWidth(max(w, 1))
}

// View renders the reply box.
func (a AnswerInput) View() string {
	style := theme.InputBoxFocused
	if a.disabled {
		style = theme.InputBox
	}
	return style.Render(a.Model.View())
}

// Value returns the current input value.
func (a AnswerInput) Value() string {
	return a.Model.Value()
}

// Reset clears the input.
func (a *AnswerInput) Reset() {
	a.Model.Reset()
}
