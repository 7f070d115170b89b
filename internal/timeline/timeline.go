package timeline

// Role identifies who authored a message.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Variant selects how a message is presented.
type Variant int

const (
	// VariantNormal is greeting, feedback and fallback text.
	VariantNormal Variant = iota

	// VariantQuestion is a numbered assessment question.
	VariantQuestion

	// VariantPassedSummary is the terminal result of a passing attempt.
	VariantPassedSummary

	// VariantFailedSummary is the terminal result of a failing attempt.
	VariantFailedSummary
)

// String returns a short label used in logs.
func (v Variant) String() string {
	switch v {
	case VariantQuestion:
		return "question"
	case VariantPassedSummary:
		return "passed-summary"
	case VariantFailedSummary:
		return "failed-summary"
	default:
		return "normal"
	}
}

// IsSummary reports whether v is one of the terminal result variants.
func (v Variant) IsSummary() bool {
	return v == VariantPassedSummary || v == VariantFailedSummary
}

// Message is a single entry in the conversation.
type Message struct {
	Role     Role
	Text     string
	Revealed bool
	Variant  Variant
}

// Animated reports whether the message must be played through the reveal
// scheduler before it is shown in full.
func (m Message) Animated() bool {
	if m.Role != RoleAssistant || m.Revealed {
		return false
	}
	return !m.Variant.IsSummary()
}

// Timeline is the ordered, append-only message log of one session.
// Indices handed out by Append stay valid until Reset.
type Timeline struct {
	msgs []Message
}

// New creates an empty Timeline.
func New() *Timeline {
	return &Timeline{}
}

// Append adds m to the end of the log and returns its index. Messages that
// are not animated are stored as already revealed.
func (t *Timeline) Append(m Message) int {
	if !m.Animated() {
		m.Revealed = true
	}
	t.msgs = append(t.msgs, m)
	return len(t.msgs) - 1
}

// Len returns the number of messages.
func (t *Timeline) Len() int {
	return len(t.msgs)
}

// At returns the message at index i.
func (t *Timeline) At(i int) Message {
	return t.msgs[i]
}

// Last returns the most recent message and false if the log is empty.
func (t *Timeline) Last() (Message, bool) {
	if len(t.msgs) == 0 {
		return Message{}, false
	}
	return t.msgs[len(t.msgs)-1], true
}

// Messages returns a copy of the log.
func (t *Timeline) Messages() []Message {
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Text returns the full text of message i.
func (t *Timeline) Text(i int) string {
	if i < 0 || i >= len(t.msgs) {
		return ""
	}
	return t.msgs[i].Text
}

// MarkRevealed flags message i as fully shown.
func (t *Timeline) MarkRevealed(i int) {
	if i < 0 || i >= len(t.msgs) {
		return
	}
	t.msgs[i].Revealed = true
}

// Reset drops every message.
func (t *Timeline) Reset() {
	t.msgs = nil
}
