package store

import (
	"context"
	"time"
)

// QueryOpts configures list queries.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // optional purpose filter
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// AnswerRecord is one answered question inside a result. The JSON shape is
// the one stored in the answers column.
type AnswerRecord struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// ResultRecord is one completed knowledge-check attempt.
type ResultRecord struct {
	ID             int64
	AttemptID      string
	UserID         string
	CourseID       string
	ModuleNum      int
	LessonNum      int
	Score          int
	TotalQuestions int
	Passed         bool
	Answers        []AnswerRecord
	CompletedAt    time.Time
}

// ResultFilter narrows ListResults. Empty fields match everything.
type ResultFilter struct {
	UserID   string
	CourseID string
	Limit    int
}

// LessonAverage is the aggregate performance for one lesson.
type LessonAverage struct {
	CourseID    string
	ModuleNum   int
	LessonNum   int
	Attempts    int
	Passes      int
	AvgScorePct float64
}

// ResultRepo records and queries knowledge-check results.
type ResultRepo interface {
	// AppendResult stores r. A missing AttemptID or CompletedAt is filled in.
	AppendResult(ctx context.Context, r ResultRecord) (ResultRecord, error)

	// ListResults returns results newest first.
	ListResults(ctx context.Context, f ResultFilter) ([]ResultRecord, error)

	// LessonAverages returns the average score percentage per lesson,
	// ordered by course, module and lesson.
	LessonAverages(ctx context.Context, courseID string) ([]LessonAverage, error)
}
