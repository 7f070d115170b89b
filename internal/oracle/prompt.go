package oracle

import (
	"fmt"
	"strings"
)

const tutorName = "Will"

const britishEnglishRule = "Use British English spelling throughout (e.g. 'prioritise' not 'prioritize', 'organisation' not 'organization', 'colour' not 'color', 'analyse' not 'analyze')"

// DefaultFeedbackInstructions are applied when a request carries none.
const DefaultFeedbackInstructions = "If correct: brief praise (1-2 sentences). If incorrect: acknowledge the attempt, then provide the correct answer."

// buildQuestionSystem constructs the system prompt for question generation.
func buildQuestionSystem(req QuestionRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a tutor conducting a knowledge check for a student. You need to generate question %d of %d.\n\n",
		tutorName, req.QuestionNumber, req.TotalQuestions)

	if req.IsAboutPriorLessons {
		b.WriteString("Prior Lessons Content:\n")
		b.WriteString(req.PriorLessonsContext)
	} else {
		b.WriteString("Current Lesson Content:\n")
		b.WriteString(req.LessonContext)
		if strings.TrimSpace(req.PriorLessonsContext) != "" {
			b.WriteString("\n\nNote: The student has completed prior lessons, but this question should focus ONLY on the current lesson content above.")
		}
	}

	b.WriteString("\n\nPreviously Asked Questions:\n")
	b.WriteString(previousQuestions(req.PreviousQA))

	scope := "current lesson"
	if req.IsAboutPriorLessons {
		scope = "prior lessons"
	}

	b.WriteString("\n\nYour task:\n")
	fmt.Fprintf(&b, "- Generate ONE clear, specific question that tests the student's understanding of the %s\n", scope)
	b.WriteString("- The question should be open-ended (not multiple choice)\n")
	b.WriteString("- Vary the difficulty: some questions should be straightforward recall, others should require deeper understanding or application\n")
	b.WriteString("- DO NOT repeat any previously asked questions\n")
	b.WriteString("- Make sure the question can be answered based on the content provided\n")
	b.WriteString("- Keep the question concise and clear\n")
	b.WriteString("- Be friendly and encouraging in your tone\n")

	if req.IsAboutPriorLessons {
		b.WriteString(`- The prior lessons content contains MULTIPLE lessons separated by "========". Select a lesson from ANYWHERE in the content, not always the first one.` + "\n")
		b.WriteString("- This question should test recall and understanding from lessons completed BEFORE the current lesson\n")
		if req.QuestionNumber > 1 {
			b.WriteString("- Pick a DIFFERENT lesson than the previous prior-lesson question\n")
		}
	} else {
		b.WriteString("- Focus exclusively on the current lesson content\n")
	}

	if req.UseBritishEnglish {
		b.WriteString("- " + britishEnglishRule + "\n")
	}

	return b.String()
}

func buildQuestionUser(req QuestionRequest) string {
	return fmt.Sprintf("Generate question %d of %d for this knowledge check.", req.QuestionNumber, req.TotalQuestions)
}

// buildEvaluationSystem constructs the system prompt for answer marking.
func buildEvaluationSystem(req EvaluationRequest) string {
	rules := req.FeedbackInstructions
	if strings.TrimSpace(rules) == "" {
		rules = DefaultFeedbackInstructions
	}

	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a tutor evaluating a student's answer to a knowledge check question.\n\n", tutorName)
	b.WriteString("Lesson Content:\n")
	b.WriteString(req.LessonContext)
	fmt.Fprintf(&b, "\n\nQuestion Asked: %s\n\nStudent's Answer: %s\n\n", req.Question, req.Answer)

	b.WriteString("EVALUATION CRITERIA:\n")
	b.WriteString("- Be somewhat lenient: if they show they understand the core concept, mark it correct even if they don't have every detail\n")
	b.WriteString("- " + britishEnglishRule + "\n")
	b.WriteString("- Use a calm, professional tone with at most one exclamation point\n\n")

	b.WriteString("SOURCE OF TRUTH:\n")
	b.WriteString("- Feedback and correct answers MUST come ONLY from the Lesson Content above\n")
	b.WriteString("- Do NOT use external knowledge or general industry definitions\n")
	b.WriteString("- Quote or paraphrase the lesson content when providing the correct answer\n\n")

	b.WriteString("FEEDBACK RULES:\n")
	b.WriteString(rules)
	b.WriteString("\n\nFORMATTING RULES:\n")
	b.WriteString("- MAXIMUM 3 SENTENCES TOTAL\n")
	b.WriteString("- Plain prose only, no bullet points, dashes or lists\n")
	b.WriteString("- No line breaks within the feedback\n")

	return b.String()
}

const evaluationUser = "Evaluate this answer and provide feedback."

// previousQuestions lists already-asked questions, one per line.
func previousQuestions(qa []QA) string {
	if len(qa) == 0 {
		return "None yet"
	}
	lines := make([]string, len(qa))
	for i, q := range qa {
		lines[i] = q.Question
	}
	return strings.Join(lines, "\n")
}
