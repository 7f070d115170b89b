package assessment

import (
	"context"
	"time"

	"github.com/ignite/kcheck/internal/store"
)

// Result is the record of a completed attempt handed to a ResultLogger.
type Result struct {
	UserID         string
	CourseID       string
	ModuleNum      int
	LessonNum      int
	Score          int
	TotalQuestions int
	Passed         bool
	Answers        []Answer
	CompletedAt    time.Time
}

// ResultLogger records completed attempts. Failures never block the learner.
type ResultLogger interface {
	LogResult(ctx context.Context, r Result) error
}

// StoreLogger writes results to the store's result log.
type StoreLogger struct {
	repo store.ResultRepo
}

// NewStoreLogger returns a ResultLogger backed by repo.
func NewStoreLogger(repo store.ResultRepo) *StoreLogger {
	return &StoreLogger{repo: repo}
}

func (l *StoreLogger) LogResult(ctx context.Context, r Result) error {
	answers := make([]store.AnswerRecord, len(r.Answers))
	for i, a := range r.Answers {
		answers[i] = store.AnswerRecord{
			Question:  a.Question,
			Answer:    a.AnswerText,
			IsCorrect: a.IsCorrect,
			Feedback:  a.Feedback,
		}
	}
	_, err := l.repo.AppendResult(ctx, store.ResultRecord{
		UserID:         r.UserID,
		CourseID:       r.CourseID,
		ModuleNum:      r.ModuleNum,
		LessonNum:      r.LessonNum,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Passed:         r.Passed,
		Answers:        answers,
		CompletedAt:    r.CompletedAt,
	})
	return err
}
