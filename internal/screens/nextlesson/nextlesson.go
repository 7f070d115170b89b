package nextlesson

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ignite/kcheck/internal/screen"
	"github.com/ignite/kcheck/internal/ui/layout"
	"github.com/ignite/kcheck/internal/ui/theme"
)

// NextLessonScreen is shown after a passed check hands control back.
type NextLessonScreen struct {
	lesson string
}

var _ screen.Screen = (*NextLessonScreen)(nil)

// New creates a NextLessonScreen for the named lesson. An empty name means
// the course is finished.
func New(lesson string) *NextLessonScreen {
	return &NextLessonScreen{lesson: lesson}
}

func (n *NextLessonScreen) Init() tea.Cmd {
	return nil
}

func (n *NextLessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok && (key.String() == "enter" || key.String() == "q") {
		return n, tea.Quit
	}
	return n, nil
}

func (n *NextLessonScreen) View(width, height int) string {
	body := theme.Title.Render("Knowledge check passed") + "\n\n"
	if n.lesson != "" {
		body += theme.Body.Render("Up next: "+n.lesson) + "\n\n"
	} else {
		body += theme.Body.Render("You have reached the end of the course.") + "\n\n"
	}
	body += theme.Hint.Render("Press Enter to exit")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)
}

func (n *NextLessonScreen) Title() string {
	return "Lesson Complete"
}

func (n *NextLessonScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Enter", Description: "Exit"}}
}
