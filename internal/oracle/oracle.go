// Package oracle talks to the service that writes knowledge-check questions
// and marks free-text answers.
package oracle

import "context"

// Oracle generates lesson-specific questions and evaluates answers.
// Implementations must not retry or cache: a failed call is reported to the
// caller, which decides what the learner sees.
type Oracle interface {
	// NextQuestion returns the text of the next question to ask.
	NextQuestion(ctx context.Context, req QuestionRequest) (string, error)

	// Evaluate marks a single answer.
	Evaluate(ctx context.Context, req EvaluationRequest) (*Evaluation, error)
}

// QA is a question already asked in the current attempt.
type QA struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// QuestionRequest is the payload for generating question N of an attempt.
type QuestionRequest struct {
	LessonContext       string `json:"lessonContext"`
	PriorLessonsContext string `json:"priorLessonsContext"`
	QuestionNumber      int    `json:"questionNumber"`
	TotalQuestions      int    `json:"totalQuestions"`
	PreviousQA          []QA   `json:"previousQA"`
	IsAboutPriorLessons bool   `json:"isAboutPriorLessons"`
	NumPriorQuestions   int    `json:"numPriorQuestions"`
	UseBritishEnglish   bool   `json:"useBritishEnglish,omitempty"`
}

// EvaluationRequest is the payload for marking one answer.
type EvaluationRequest struct {
	LessonContext string `json:"lessonContext"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`

	// FeedbackInstructions optionally overrides the default feedback rules.
	FeedbackInstructions string `json:"feedbackInstructions,omitempty"`
}

// Evaluation is the verdict on one answer.
type Evaluation struct {
	IsCorrect bool
	Feedback  string
}

// Paths of the two Oracle endpoints, relative to the service base URL.
const (
	QuestionPath = "/api/knowledge-check/question"
	EvaluatePath = "/api/knowledge-check/evaluate"
)

// QuestionResponse is the wire envelope returned by the question endpoint.
type QuestionResponse struct {
	Success  *bool  `json:"success"`
	Question string `json:"question,omitempty"`
	Error    string `json:"error,omitempty"`
}

// EvaluateResponse is the wire envelope returned by the evaluate endpoint.
type EvaluateResponse struct {
	Success   *bool   `json:"success"`
	IsCorrect *bool   `json:"isCorrect,omitempty"`
	Feedback  *string `json:"feedback,omitempty"`
	Error     string  `json:"error,omitempty"`
}
