package assessment

import "github.com/ignite/kcheck/internal/oracle"

// Every message carries the epoch it was issued under. Messages from an
// earlier epoch belong to a closed or retaken attempt and are dropped.

// greetingMsg fires after the greeting delay.
type greetingMsg struct {
	epoch int
}

// questionReadyMsg is sent when a question request finishes.
type questionReadyMsg struct {
	epoch    int
	number   int
	question string
	err      error
}

// evaluatedMsg is sent when an evaluation request finishes.
type evaluatedMsg struct {
	epoch  int
	answer string
	result *oracle.Evaluation
	err    error
}

// nextQuestionMsg fires after the pause between feedback and the next question.
type nextQuestionMsg struct {
	epoch int
}

// ResultLoggedMsg reports the outcome of logging a completed attempt.
type ResultLoggedMsg struct {
	epoch int
	Err   error
}
