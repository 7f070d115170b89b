package knowledgecheck

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ignite/kcheck/internal/assessment"
	"github.com/ignite/kcheck/internal/oracle"
	"github.com/ignite/kcheck/internal/reveal"
)

type stubOracle struct{}

func (stubOracle) NextQuestion(_ context.Context, req oracle.QuestionRequest) (string, error) {
	return fmt.Sprintf("Question %d?", req.QuestionNumber), nil
}

func (stubOracle) Evaluate(_ context.Context, req oracle.EvaluationRequest) (*oracle.Evaluation, error) {
	return &oracle.Evaluation{IsCorrect: req.Answer != "wrong", Feedback: "Noted."}, nil
}

type passedMsg struct{}
type closedMsg struct{}

func newTestScreen() *KnowledgeCheckScreen {
	ctrl := assessment.New(assessment.Config{
		LessonName:        "Discovery",
		IsFirstLesson:     true,
		GreetingDelay:     time.Millisecond,
		NextQuestionDelay: time.Millisecond,
		Reveal:            reveal.Config{Tick: time.Microsecond},
	}, assessment.Deps{
		Oracle: stubOracle{},
		Hooks: assessment.Hooks{
			OnPass:  func() tea.Cmd { return func() tea.Msg { return passedMsg{} } },
			OnClose: func() tea.Cmd { return func() tea.Msg { return closedMsg{} } },
		},
	})
	return New(ctrl)
}

// drive runs cmd and everything it leads to through the screen.
func drive(t *testing.T, s *KnowledgeCheckScreen, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100000 {
			t.Fatal("screen did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		// Cursor blinking never settles.
		if strings.HasPrefix(fmt.Sprintf("%T", msg), "cursor.") {
			continue
		}
		_, c := s.Update(msg)
		queue = append(queue, c)
	}
}

func typeText(s *KnowledgeCheckScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func press(s *KnowledgeCheckScreen, code rune) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: code})
	return cmd
}

func reply(t *testing.T, s *KnowledgeCheckScreen, text string) {
	t.Helper()
	typeText(s, text)
	drive(t, s, press(s, tea.KeyEnter))
}

func TestGreetingThenFirstQuestion(t *testing.T) {
	s := newTestScreen()
	drive(t, s, s.ctrl.Open())

	if s.ctrl.Phase() != assessment.PhaseAwaitingFirstResponse {
		t.Fatalf("phase = %v", s.ctrl.Phase())
	}
	if s.Status() != "" {
		t.Errorf("status before questions = %q", s.Status())
	}

	reply(t, s, "ready")

	if s.ctrl.Phase() != assessment.PhaseAskingQuestion {
		t.Fatalf("phase = %v", s.ctrl.Phase())
	}
	if got := s.Status(); got != "Question 1 of 5" {
		t.Errorf("status = %q", got)
	}
	if s.input.Value() != "" {
		t.Errorf("input not cleared: %q", s.input.Value())
	}
	if view := s.View(100, 30); !strings.Contains(view, "1. Question 1?") {
		t.Errorf("view missing first question:\n%s", view)
	}
}

func TestInputBlockedWhileBusy(t *testing.T) {
	s := newTestScreen()
	drive(t, s, s.ctrl.Open())

	typeText(s, "ready")
	cmd := press(s, tea.KeyEnter)
	if s.ctrl.Phase() != assessment.PhaseFetchingQuestion {
		t.Fatalf("phase = %v", s.ctrl.Phase())
	}
	if !s.input.Disabled() {
		t.Error("input should be disabled while fetching")
	}

	typeText(s, "more")
	if s.input.Value() != "" {
		t.Errorf("typing while busy should be dropped, got %q", s.input.Value())
	}
	drive(t, s, cmd)
	if s.input.Disabled() {
		t.Error("input should be enabled once the question is asked")
	}
}

func TestBlankEnterIgnored(t *testing.T) {
	s := newTestScreen()
	drive(t, s, s.ctrl.Open())

	typeText(s, "   ")
	if cmd := press(s, tea.KeyEnter); cmd != nil {
		t.Error("blank reply should not produce a command")
	}
	if s.ctrl.Timeline().Len() != 1 {
		t.Errorf("timeline len = %d, want only the greeting", s.ctrl.Timeline().Len())
	}
}

func TestPassThenContinue(t *testing.T) {
	s := newTestScreen()
	drive(t, s, s.ctrl.Open())
	reply(t, s, "ready")
	for range 5 {
		reply(t, s, "an answer")
	}

	if s.ctrl.Phase() != assessment.PhaseCompleted {
		t.Fatalf("phase = %v", s.ctrl.Phase())
	}
	if got := s.Status(); got != "Score 5/5" {
		t.Errorf("status = %q", got)
	}
	hints := s.KeyHints()
	if len(hints) == 0 || hints[0].Description != "Continue" {
		t.Errorf("hints = %+v", hints)
	}

	cmd := press(s, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("enter after passing should proceed")
	}
	if _, ok := cmd().(passedMsg); !ok {
		t.Error("expected the pass hook to run")
	}
}

func TestFailThenRetake(t *testing.T) {
	s := newTestScreen()
	drive(t, s, s.ctrl.Open())
	reply(t, s, "ready")
	for range 5 {
		reply(t, s, "wrong")
	}

	if s.ctrl.Session().Passed {
		t.Fatal("expected a failing attempt")
	}
	if cmd := press(s, tea.KeyEnter); cmd != nil {
		t.Error("enter after failing should do nothing")
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	drive(t, s, cmd)

	if got := s.Status(); got != "Question 1 of 5" {
		t.Errorf("status after retake = %q", got)
	}
	if n := s.ctrl.Timeline().Len(); n != 1 {
		t.Errorf("timeline len after retake = %d, want 1", n)
	}
}

func TestEscCloses(t *testing.T) {
	s := newTestScreen()
	drive(t, s, s.ctrl.Open())

	cmd := press(s, tea.KeyEscape)
	if cmd == nil {
		t.Fatal("esc should close")
	}
	if _, ok := cmd().(closedMsg); !ok {
		t.Error("expected the close hook to run")
	}
	if s.ctrl.Phase() != assessment.PhaseIdle {
		t.Errorf("phase = %v", s.ctrl.Phase())
	}
	if !s.HandlesEscape() {
		t.Error("screen should own esc")
	}
}

func TestViewFitsHeight(t *testing.T) {
	s := newTestScreen()
	drive(t, s, s.ctrl.Open())
	reply(t, s, "ready")

	view := s.View(80, 20)
	if lines := strings.Count(view, "\n") + 1; lines > 20 {
		t.Errorf("view has %d lines, want at most 20", lines)
	}
}
