package assessment

import (
	"fmt"
	"strings"
)

var greetingVariations = []string{
	"Great work studying",
	"Excellent job completing",
	"Well done finishing",
	"Nice work working through",
	"Fantastic effort studying",
	"Impressive work completing",
	"Strong work finishing",
}

const (
	firstLessonBody = "I'll now ask you 5 questions, which you should answer in natural language as if you were talking to a person. " +
		"Make sure your answers are sufficiently detailed, and that you answer the question asked. " +
		"You will need to score 80% or above to pass. " +
		"If you close this window, you will need to restart.\n\nReady to begin?"

	laterLessonBody = "I'll now ask you seven questions, which you should answer in natural language as if you were talking to a person. " +
		"The first two questions are from previous %s content, followed by five questions from %s. " +
		"You need to answer five or more correctly to pass. " +
		"If you close this window, you will need to restart.\n\nReady to begin?"
)

// firstName returns the first word of a display name.
func firstName(displayName string) string {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// greetingText builds the opening message. variation indexes
// greetingVariations and is reduced modulo its length.
func greetingText(cfg Config, variation int) string {
	opener := greetingVariations[variation%len(greetingVariations)]
	if name := firstName(cfg.DisplayName); name != "" {
		opener += ", " + name
	}

	if cfg.IsFirstLesson {
		return opener + ".\n\n" + firstLessonBody
	}

	course := cfg.CourseName
	if course == "" {
		course = "course"
	}
	lesson := cfg.LessonName
	if lesson == "" {
		lesson = "this lesson"
	}
	return opener + ".\n\n" + fmt.Sprintf(laterLessonBody, course, lesson)
}

// QuestionText formats a question as it appears in the conversation.
func QuestionText(n int, question string) string {
	return fmt.Sprintf("%d. %s", n, question)
}

// SummaryText returns the final score message.
func SummaryText(score int, s Scoring) string {
	if s.Passed(score) {
		return fmt.Sprintf("Congratulations. You scored %d/%d. You've passed this lesson and can move on to the next one. Great work.",
			score, s.TotalQuestions)
	}
	return fmt.Sprintf("You scored %d/%d. You need %d correct answers to pass. Don't worry - you can retake the knowledge check.",
		score, s.TotalQuestions, s.PassThreshold)
}

// Fallback messages shown when the Oracle cannot be reached or answers
// nonsense.
const (
	EvaluateFallback = "Sorry, I encountered an error evaluating your answer. Please try again!"
	QuestionFallback = "Sorry, I encountered an error getting the next question. Please try again!"
)

// Skip answer recorded when a privileged learner skips a question.
const (
	SkippedAnswer   = "[Skipped]"
	SkippedFeedback = "Question skipped."
)
