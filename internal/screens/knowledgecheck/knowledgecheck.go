// Package knowledgecheck hosts an assessment.Controller as a chat-style
// screen: a scrolling conversation above a single reply box.
package knowledgecheck

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/ignite/kcheck/internal/assessment"
	"github.com/ignite/kcheck/internal/screen"
	"github.com/ignite/kcheck/internal/ui/components"
	"github.com/ignite/kcheck/internal/ui/layout"
)

// KnowledgeCheckScreen implements screen.Screen for one knowledge check.
type KnowledgeCheckScreen struct {
	ctrl   *assessment.Controller
	input  components.AnswerInput
	vp     viewport.Model
	follow bool
}

var (
	_ screen.Screen          = (*KnowledgeCheckScreen)(nil)
	_ screen.KeyHintProvider = (*KnowledgeCheckScreen)(nil)
	_ screen.StatusProvider  = (*KnowledgeCheckScreen)(nil)
	_ screen.EscapeHandler   = (*KnowledgeCheckScreen)(nil)
	_ assessment.Surface     = (*KnowledgeCheckScreen)(nil)
)

// New creates the screen and registers it as the controller's surface.
func New(ctrl *assessment.Controller) *KnowledgeCheckScreen {
	s := &KnowledgeCheckScreen{
		ctrl:   ctrl,
		input:  components.NewAnswerInput("Type your answer..."),
		vp:     viewport.New(),
		follow: true,
	}
	s.vp.SoftWrap = true
	ctrl.SetSurface(s)
	s.syncInput()
	return s
}

func (s *KnowledgeCheckScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.ctrl.Open())
}

func (s *KnowledgeCheckScreen) Title() string {
	if name := s.ctrl.Config().LessonName; name != "" {
		return "Knowledge Check: " + name
	}
	return "Knowledge Check"
}

// ScrollToBottom pins the conversation to its newest message on the next
// render.
func (s *KnowledgeCheckScreen) ScrollToBottom() {
	s.follow = true
}

// HandlesEscape reports that esc closes the check instead of popping it.
func (s *KnowledgeCheckScreen) HandlesEscape() bool {
	return true
}

// Status shows the question counter, or the score once complete.
func (s *KnowledgeCheckScreen) Status() string {
	sess := s.ctrl.Session()
	switch sess.Phase {
	case assessment.PhaseIdle, assessment.PhaseGreeting, assessment.PhaseAwaitingFirstResponse:
		return ""
	case assessment.PhaseCompleted:
		return fmt.Sprintf("Score %d/%d", sess.Score, sess.TotalQuestions)
	}
	return fmt.Sprintf("Question %d of %d", sess.CurrentQuestionIndex+1, sess.TotalQuestions)
}

func (s *KnowledgeCheckScreen) KeyHints() []layout.KeyHint {
	sess := s.ctrl.Session()
	if sess.Phase == assessment.PhaseCompleted {
		hints := []layout.KeyHint{}
		if sess.Passed {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Continue"})
		}
		return append(hints,
			layout.KeyHint{Key: "R", Description: "Retake"},
			layout.KeyHint{Key: "Esc", Description: "Close"},
		)
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Esc", Description: "Close"},
	}
}

func (s *KnowledgeCheckScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	defer s.syncInput()

	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return s, s.handleKey(msg)

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		s.vp, cmd = s.vp.Update(msg)
		return s, cmd
	}

	ctrlCmd := s.ctrl.Update(msg)
	var inputCmd tea.Cmd
	s.input, inputCmd = s.input.Update(msg)
	return s, tea.Batch(ctrlCmd, inputCmd)
}

func (s *KnowledgeCheckScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return s.ctrl.Close()
	case "pgup":
		s.vp.PageUp()
		s.follow = false
		return nil
	case "pgdown":
		s.vp.PageDown()
		return nil
	}

	if s.ctrl.Phase() == assessment.PhaseCompleted {
		switch strings.ToLower(msg.String()) {
		case "enter", "p":
			return s.ctrl.Proceed()
		case "r":
			s.input.Reset()
			return s.ctrl.Retake()
		}
		return nil
	}

	if msg.String() == "enter" {
		text := s.input.Value()
		if !s.ctrl.CanSubmit() || strings.TrimSpace(text) == "" {
			return nil
		}
		cmd := s.ctrl.Submit(text)
		s.input.Reset()
		return cmd
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// syncInput blocks typing while the controller cannot take a reply.
func (s *KnowledgeCheckScreen) syncInput() {
	s.input.SetDisabled(!s.ctrl.CanSubmit())
}
