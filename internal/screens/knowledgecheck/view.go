package knowledgecheck

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/ignite/kcheck/internal/assessment"
	"github.com/ignite/kcheck/internal/timeline"
	"github.com/ignite/kcheck/internal/ui/components"
	"github.com/ignite/kcheck/internal/ui/layout"
	"github.com/ignite/kcheck/internal/ui/theme"
)

const sidePadding = 2

func (s *KnowledgeCheckScreen) View(width, height int) string {
	inner := max(width-2*sidePadding, 10)
	pad := lipgloss.NewStyle().PaddingLeft(sidePadding)

	progress := pad.Render(s.renderProgress(inner))
	status := pad.Render(s.renderStatusLine())

	s.input.SetWidth(inner - 6)
	input := pad.Render(s.input.View())

	vpHeight := height - lipgloss.Height(progress) - lipgloss.Height(status) - lipgloss.Height(input) - 1
	s.vp.SetWidth(width)
	s.vp.SetHeight(max(vpHeight, 1))
	s.vp.SetContent(pad.Render(s.renderConversation(inner)))
	if s.follow {
		s.vp.GotoBottom()
		s.follow = false
	}

	return lipgloss.JoinVertical(lipgloss.Left, progress, "", s.vp.View(), status, input)
}

func (s *KnowledgeCheckScreen) renderProgress(width int) string {
	sess := s.ctrl.Session()
	pct := 0.0
	if sess.TotalQuestions > 0 {
		pct = float64(len(sess.Answers)) / float64(sess.TotalQuestions)
	}
	return components.NewProgressBar("Progress", pct, true, width).View()
}

// renderStatusLine shows what the assistant is doing, or the completion
// actions.
func (s *KnowledgeCheckScreen) renderStatusLine() string {
	sess := s.ctrl.Session()
	switch sess.Phase {
	case assessment.PhaseGreeting, assessment.PhaseFetchingQuestion:
		return theme.Typing.Render("Preparing the next question...")
	case assessment.PhaseEvaluating:
		return theme.Typing.Render("Reviewing your answer...")
	case assessment.PhaseCompleted:
		if sess.Passed {
			return components.ButtonRow(
				components.NewButton("Enter", "Continue", true),
				components.NewButton("R", "Retake", false),
			)
		}
		return components.ButtonRow(components.NewButton("R", "Retake", true))
	}
	return ""
}

func (s *KnowledgeCheckScreen) renderConversation(width int) string {
	tl := s.ctrl.Timeline()
	bubbleWidth := width * 4 / 5
	if layout.IsCompactWidth(width) {
		bubbleWidth = width
	}

	var blocks []string
	for i := range tl.Len() {
		m := tl.At(i)
		text := s.ctrl.Visible(i)
		if text == "" {
			continue
		}
		blocks = append(blocks, renderMessage(m, text, width, bubbleWidth))
	}
	return strings.Join(blocks, "\n\n")
}

func renderMessage(m timeline.Message, text string, width, bubbleWidth int) string {
	if m.Role == timeline.RoleUser {
		style := theme.User
		if lipgloss.Width(text)+style.GetHorizontalFrameSize() > bubbleWidth {
			style = style.Width(bubbleWidth)
		}
		bubble := style.Render(text)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	}

	switch m.Variant {
	case timeline.VariantQuestion:
		return theme.Question.Width(bubbleWidth).Render(text)
	case timeline.VariantPassedSummary:
		return theme.PassedSummary.Width(bubbleWidth).Render(text)
	case timeline.VariantFailedSummary:
		return theme.FailedSummary.Width(bubbleWidth).Render(text)
	}
	return theme.Assistant.Width(bubbleWidth).Render(text)
}
