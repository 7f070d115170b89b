// Package reveal plays assistant messages as a paced character stream.
//
// A Scheduler animates one message at a time. Messages enqueued while a
// reveal is running wait their turn in FIFO order. Timing is driven by
// tea.Tick; every tick carries the generation tag it was scheduled under so
// that ticks belonging to a stopped or replaced reveal are dropped.
package reveal

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// None is returned by Update when no reveal completed.
const None = -1

// Config holds the pacing parameters.
type Config struct {
	// Tick is the interval between characters. Default: 45ms.
	Tick time.Duration

	// NewlinePauseTicks is the number of idle ticks after a newline.
	NewlinePauseTicks int

	// SentencePauseTicks is the number of idle ticks after '.', '!' or '?'.
	SentencePauseTicks int
}

// DefaultConfig returns the standard reading pace.
func DefaultConfig() Config {
	return Config{
		Tick:               45 * time.Millisecond,
		NewlinePauseTicks:  15,
		SentencePauseTicks: 7,
	}
}

// Source gives the scheduler access to message text by index.
type Source interface {
	Text(i int) string
	MarkRevealed(i int)
}

// TickMsg advances the active reveal by one step.
type TickMsg struct {
	Time time.Time
	tag  int
}

// Scheduler animates messages from a Source.
type Scheduler struct {
	cfg   Config
	src   Source
	queue []int

	active int
	runes  []rune
	pos    int
	pause  int
	tag    int
}

// New creates an idle Scheduler.
func New(cfg Config, src Source) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultConfig().Tick
	}
	return &Scheduler{cfg: cfg, src: src, active: None}
}

// Config returns the pacing in use.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Enqueue schedules message i for reveal. If nothing is playing the reveal
// starts right away and the first tick is returned.
func (s *Scheduler) Enqueue(i int) tea.Cmd {
	if s.active != None {
		s.queue = append(s.queue, i)
		return nil
	}
	return s.start(i)
}

// Update handles a TickMsg. It returns the index of the message whose reveal
// finished during this step, or None, plus the next tick to wait for.
// Non-tick and stale messages are ignored.
func (s *Scheduler) Update(msg tea.Msg) (int, tea.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok || tick.tag != s.tag || s.active == None {
		return None, nil
	}

	if s.pause > 0 {
		s.pause--
		return None, s.tick()
	}

	if s.pos < len(s.runes) {
		ch := s.runes[s.pos]
		s.pos++
		switch ch {
		case '\n':
			s.pause = s.cfg.NewlinePauseTicks
		case '.', '!', '?':
			s.pause = s.cfg.SentencePauseTicks
		}
		return None, s.tick()
	}

	done := s.active
	s.src.MarkRevealed(done)
	s.active = None
	s.runes = nil

	if len(s.queue) == 0 {
		return done, nil
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	return done, s.start(next)
}

// Stop tears down the running reveal and forgets queued messages. Ticks
// already in flight are discarded when they arrive.
func (s *Scheduler) Stop() {
	s.tag++
	s.active = None
	s.runes = nil
	s.pos = 0
	s.pause = 0
	s.queue = nil
}

// Active returns the index of the message being revealed, or None.
func (s *Scheduler) Active() int {
	return s.active
}

// Idle reports whether no message is playing or waiting.
func (s *Scheduler) Idle() bool {
	return s.active == None && len(s.queue) == 0
}

// Pending reports whether message i is queued but not yet started.
func (s *Scheduler) Pending(i int) bool {
	for _, q := range s.queue {
		if q == i {
			return true
		}
	}
	return false
}

// Visible returns the portion of message i's text that should currently be
// displayed: a prefix while it is active, nothing while queued, and full
// text otherwise.
func (s *Scheduler) Visible(i int) string {
	if i == s.active {
		return string(s.runes[:s.pos])
	}
	if s.Pending(i) {
		return ""
	}
	return s.src.Text(i)
}

func (s *Scheduler) start(i int) tea.Cmd {
	s.tag++
	s.active = i
	s.runes = []rune(s.src.Text(i))
	s.pos = 0
	s.pause = 0
	return s.tick()
}

func (s *Scheduler) tick() tea.Cmd {
	tag := s.tag
	return tea.Tick(s.cfg.Tick, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, tag: tag}
	})
}
