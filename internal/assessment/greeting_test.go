package assessment

import (
	"strings"
	"testing"
)

func TestGreetingText(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		variation int
		prefix    string
		contains  []string
	}{
		{
			name:      "first lesson with name",
			cfg:       Config{DisplayName: "Ada Lovelace", IsFirstLesson: true},
			variation: 0,
			prefix:    "Great work studying, Ada.\n\n",
			contains:  []string{"5 questions", "80% or above", "you will need to restart", "Ready to begin?"},
		},
		{
			name:      "later lesson without name",
			cfg:       Config{CourseName: "Product Management", LessonName: "User Research"},
			variation: 1,
			prefix:    "Excellent job completing.\n\n",
			contains:  []string{"seven questions", "previous Product Management content", "five questions from User Research", "five or more correctly"},
		},
		{
			name:      "later lesson fallbacks",
			cfg:       Config{},
			variation: 8,
			prefix:    "Excellent job completing.\n\n",
			contains:  []string{"previous course content", "from this lesson"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := greetingText(tt.cfg, tt.variation)
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("greeting %q does not start with %q", got, tt.prefix)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("greeting missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestSummaryText(t *testing.T) {
	passed := SummaryText(4, ScoringFor(true))
	if passed != "Congratulations. You scored 4/5. You've passed this lesson and can move on to the next one. Great work." {
		t.Errorf("passed summary = %q", passed)
	}
	failed := SummaryText(4, ScoringFor(false))
	if failed != "You scored 4/7. You need 5 correct answers to pass. Don't worry - you can retake the knowledge check." {
		t.Errorf("failed summary = %q", failed)
	}
}

func TestQuestionText(t *testing.T) {
	if got := QuestionText(3, "What is a persona?"); got != "3. What is a persona?" {
		t.Errorf("got %q", got)
	}
}
