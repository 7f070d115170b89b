package reveal

import (
	"testing"
	"time"
)

type fakeSource struct {
	texts    []string
	revealed map[int]bool
}

func newFakeSource(texts ...string) *fakeSource {
	return &fakeSource{texts: texts, revealed: map[int]bool{}}
}

func (f *fakeSource) Text(i int) string  { return f.texts[i] }
func (f *fakeSource) MarkRevealed(i int) { f.revealed[i] = true }

func testConfig() Config {
	return Config{Tick: time.Millisecond, NewlinePauseTicks: 3, SentencePauseTicks: 2}
}

// step feeds one current-generation tick into the scheduler.
func step(s *Scheduler) int {
	done, _ := s.Update(TickMsg{Time: time.Now(), tag: s.tag})
	return done
}

// ticksUntilDone counts ticks until the active reveal completes.
func ticksUntilDone(t *testing.T, s *Scheduler) int {
	t.Helper()
	for n := 1; n < 1000; n++ {
		if done := step(s); done != None {
			return n
		}
	}
	t.Fatal("reveal never completed")
	return 0
}

func TestReveal_PlainText(t *testing.T) {
	src := newFakeSource("Hi")
	s := New(testConfig(), src)
	if cmd := s.Enqueue(0); cmd == nil {
		t.Fatal("expected first tick command")
	}

	step(s)
	if got := s.Visible(0); got != "H" {
		t.Fatalf("after 1 tick visible = %q, want %q", got, "H")
	}
	step(s)
	if got := s.Visible(0); got != "Hi" {
		t.Fatalf("after 2 ticks visible = %q, want %q", got, "Hi")
	}
	if src.revealed[0] {
		t.Fatal("message marked revealed before completion tick")
	}

	if done := step(s); done != 0 {
		t.Fatalf("expected completion of message 0, got %d", done)
	}
	if !src.revealed[0] {
		t.Error("message should be marked revealed")
	}
	if !s.Idle() {
		t.Error("scheduler should be idle")
	}
}

func TestReveal_PunctuationPacing(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		text  string
		ticks int
	}{
		{"ab", 3},
		{"a.", 3 + cfg.SentencePauseTicks},
		{"a!", 3 + cfg.SentencePauseTicks},
		{"a?", 3 + cfg.SentencePauseTicks},
		{"a\nb", 4 + cfg.NewlinePauseTicks},
		{"", 1},
		{"héllo", 6},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s := New(cfg, newFakeSource(tt.text))
			s.Enqueue(0)
			if got := ticksUntilDone(t, s); got != tt.ticks {
				t.Errorf("ticks = %d, want %d", got, tt.ticks)
			}
		})
	}
}

func TestReveal_FIFOOneAtATime(t *testing.T) {
	src := newFakeSource("a", "b", "c")
	s := New(testConfig(), src)

	s.Enqueue(0)
	if cmd := s.Enqueue(1); cmd != nil {
		t.Error("enqueue while active should not start a new timer")
	}
	s.Enqueue(2)

	if s.Active() != 0 {
		t.Fatalf("active = %d, want 0", s.Active())
	}
	if s.Visible(1) != "" || s.Visible(2) != "" {
		t.Error("queued messages should not be visible")
	}

	var order []int
	for len(order) < 3 {
		if done := step(s); done != None {
			order = append(order, done)
			if len(order) < 3 && s.Active() != order[len(order)-1]+1 {
				t.Fatalf("next reveal did not start in order: active=%d", s.Active())
			}
		}
	}
	for i, idx := range order {
		if idx != i {
			t.Fatalf("completion order = %v", order)
		}
	}
}

func TestReveal_StaleTicksIgnored(t *testing.T) {
	src := newFakeSource("abc")
	s := New(testConfig(), src)
	s.Enqueue(0)

	stale := TickMsg{tag: s.tag}
	s.Stop()

	if done, cmd := s.Update(stale); done != None || cmd != nil {
		t.Error("stale tick after Stop should be ignored")
	}
	if src.revealed[0] {
		t.Error("stopped reveal must not mark message revealed")
	}
	if !s.Idle() {
		t.Error("scheduler should be idle after Stop")
	}

	// Restarting issues a new generation; the old tick still does nothing.
	s.Enqueue(0)
	s.Update(stale)
	if s.Visible(0) != "" {
		t.Errorf("stale tick advanced the new reveal: %q", s.Visible(0))
	}
}

func TestReveal_VisibleForFinishedMessage(t *testing.T) {
	src := newFakeSource("done")
	s := New(testConfig(), src)
	if s.Visible(0) != "done" {
		t.Errorf("inactive message should show full text, got %q", s.Visible(0))
	}
}
