// Package assessment runs a single knowledge-check attempt: greeting, a fixed
// number of Oracle-generated questions, evaluated answers and a final score
// that is shown only once the last feedback has finished revealing.
package assessment

// Phase represents the current phase of an attempt.
type Phase int

const (
	PhaseIdle                  Phase = iota // Surface closed or not yet opened
	PhaseGreeting                           // Waiting for the greeting delay
	PhaseAwaitingFirstResponse              // Greeting shown, waiting for the learner to start
	PhaseFetchingQuestion                   // Question request outstanding
	PhaseAskingQuestion                     // Question shown, waiting for an answer
	PhaseQuestionUnavailable                // Question request failed; next submission retries
	PhaseEvaluating                         // Answer sent to the Oracle
	PhaseAwaitingResult                     // All answers in, waiting for the last reveal
	PhaseCompleted                          // Score shown
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseGreeting:
		return "greeting"
	case PhaseAwaitingFirstResponse:
		return "awaiting-first-response"
	case PhaseFetchingQuestion:
		return "fetching-question"
	case PhaseAskingQuestion:
		return "asking-question"
	case PhaseQuestionUnavailable:
		return "question-unavailable"
	case PhaseEvaluating:
		return "evaluating"
	case PhaseAwaitingResult:
		return "awaiting-result"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Answer is one answered (or skipped) question.
type Answer struct {
	Question   string
	AnswerText string
	IsCorrect  bool
	Feedback   string
}

// Scoring holds the per-attempt constants. They are fixed when the session is
// created.
type Scoring struct {
	TotalQuestions           int
	PassThreshold            int
	PriorLessonQuestionCount int
}

// ScoringFor returns the scoring constants for a lesson. The first lesson of
// a course has no earlier material to draw on.
func ScoringFor(isFirstLesson bool) Scoring {
	if isFirstLesson {
		return Scoring{TotalQuestions: 5, PassThreshold: 4, PriorLessonQuestionCount: 0}
	}
	return Scoring{TotalQuestions: 7, PassThreshold: 5, PriorLessonQuestionCount: 2}
}

// IsAboutPriorLessons reports whether question n (1-based) draws on earlier
// lessons.
func (s Scoring) IsAboutPriorLessons(n int) bool {
	return n <= s.PriorLessonQuestionCount
}

// Passed reports whether score meets the pass threshold.
func (s Scoring) Passed(score int) bool {
	return score >= s.PassThreshold
}

// CountCorrect returns the number of correct answers.
func CountCorrect(answers []Answer) int {
	n := 0
	for _, a := range answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// Session is the runtime state of one attempt.
type Session struct {
	Scoring

	// Phase is the current phase.
	Phase Phase

	// Epoch increases on every reset. Async results carry the epoch they
	// were issued under and are dropped if it no longer matches.
	Epoch int

	// CurrentQuestionIndex is the 0-based index of the question being asked.
	CurrentQuestionIndex int

	// CurrentQuestion is the text of the outstanding question, without its number.
	CurrentQuestion string

	// Answers recorded so far, in question order.
	Answers []Answer

	// PendingScore holds the finished answer set until the last reveal ends.
	PendingScore ScoreTrigger

	IsComplete   bool
	Score        int
	Passed       bool
	IsEvaluating bool
}

func newSession(scoring Scoring, epoch int) Session {
	return Session{Scoring: scoring, Epoch: epoch}
}

// NextQuestionNumber is the 1-based number of the question to request next.
func (s *Session) NextQuestionNumber() int {
	return len(s.Answers) + 1
}
