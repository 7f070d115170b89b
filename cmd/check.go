package cmd

import (
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ignite/kcheck/internal/app"
	"github.com/ignite/kcheck/internal/assessment"
	"github.com/ignite/kcheck/internal/config"
	"github.com/ignite/kcheck/internal/router"
	"github.com/ignite/kcheck/internal/screens/knowledgecheck"
	"github.com/ignite/kcheck/internal/screens/nextlesson"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Take the knowledge check for a lesson",
	Example: `  kcheck check --lesson-file lesson3.md --lesson-name "User Interviews" \
    --course-name "Product Management" --module 2 --lesson 3 --name "Sam Lee"`,
	RunE: runCheck,
}

// checkOptions are the lesson and learner flags of the check command.
type checkOptions struct {
	LessonFile     string
	PriorFile      string
	LessonName     string
	NextLessonName string
	CourseName     string
	ModuleNum      int
	LessonNum      int
	UserID         string
	DisplayName    string
	Role           string
	FirstLesson    bool
	Feedback       string
}

var checkOpts checkOptions

func init() {
	f := checkCmd.Flags()
	f.StringVar(&checkOpts.LessonFile, "lesson-file", "", "File holding the lesson content (required)")
	f.StringVar(&checkOpts.PriorFile, "prior-file", "", "File holding earlier lessons of the module")
	f.StringVar(&checkOpts.LessonName, "lesson-name", "", "Lesson title")
	f.StringVar(&checkOpts.NextLessonName, "next-lesson", "", "Title of the lesson unlocked by passing")
	f.StringVar(&checkOpts.CourseName, "course-name", "", "Course title")
	f.String("course-id", "", "Course identifier recorded with the result")
	f.IntVar(&checkOpts.ModuleNum, "module", 0, "Module number")
	f.IntVar(&checkOpts.LessonNum, "lesson", 0, "Lesson number within the module")
	f.StringVar(&checkOpts.UserID, "user-id", "", "Learner identifier")
	f.StringVar(&checkOpts.DisplayName, "name", "", "Learner display name")
	f.StringVar(&checkOpts.Role, "role", "", "Learner role (privileged roles may skip questions)")
	f.BoolVar(&checkOpts.FirstLesson, "first-lesson", false, "This is the first lesson of the module")
	f.StringVar(&checkOpts.Feedback, "feedback-instructions", "", "Override the marking feedback rules")
	f.String("oracle", "", "Oracle mode: http or llm")
	f.String("oracle-url", "", "Oracle service URL in http mode")
	_ = checkCmd.MarkFlagRequired("lesson-file")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, bindings{
		"session.course_id": "course-id",
		"oracle.mode":       "oracle",
		"oracle.url":        "oracle-url",
	})
	if err != nil {
		return err
	}

	lesson, err := readContext(checkOpts.LessonFile)
	if err != nil {
		return err
	}
	if strings.TrimSpace(lesson) == "" {
		return fmt.Errorf("lesson file %s is empty", checkOpts.LessonFile)
	}
	prior, err := readContext(checkOpts.PriorFile)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	o, err := newOracle(cmd, cfg, st.EventRepo(), log)
	if err != nil {
		return err
	}

	acfg := checkOpts.assessmentConfig(cfg, lesson, prior)
	log.Info("starting knowledge check",
		zap.String("oracle", cfg.Oracle.Mode),
		zap.String("course", acfg.CourseID),
		zap.Int("module", acfg.ModuleNum),
		zap.Int("lesson", acfg.LessonNum),
		zap.Bool("first_lesson", acfg.IsFirstLesson))

	ctrl := assessment.New(acfg, assessment.Deps{
		Oracle:  o,
		Results: assessment.NewStoreLogger(st.ResultRepo()),
		Log:     log.Named("assessment"),
		Hooks:   checkHooks(acfg.NextLessonName),
	})
	return app.Run(knowledgecheck.New(ctrl))
}

// assessmentConfig merges the command flags with configuration.
func (o checkOptions) assessmentConfig(cfg config.Config, lesson, prior string) assessment.Config {
	return assessment.Config{
		LessonContext:        lesson,
		PriorLessonsContext:  prior,
		LessonName:           o.LessonName,
		NextLessonName:       o.NextLessonName,
		CourseName:           o.CourseName,
		CourseID:             cfg.Session.CourseID,
		ModuleNum:            o.ModuleNum,
		LessonNum:            o.LessonNum,
		UserID:               o.UserID,
		DisplayName:          o.DisplayName,
		Role:                 o.Role,
		IsFirstLesson:        o.FirstLesson,
		UseBritishEnglish:    cfg.Session.BritishEnglish,
		FeedbackInstructions: o.Feedback,
		PrivilegedRoles:      cfg.Session.PrivilegedRoles,
		GreetingDelay:        cfg.Session.GreetingDelay,
		NextQuestionDelay:    cfg.Session.NextQuestionDelay,
		Reveal:               cfg.Reveal.Scheduler(),
	}
}

// checkHooks swaps in the next-lesson screen on pass and quits on close.
func checkHooks(nextLesson string) assessment.Hooks {
	return assessment.Hooks{
		OnPass: func() tea.Cmd {
			return func() tea.Msg {
				return router.ReplaceScreenMsg{Screen: nextlesson.New(nextLesson)}
			}
		},
		OnClose: func() tea.Cmd { return tea.Quit },
	}
}

// readContext reads a lesson file. An empty path yields empty content.
func readContext(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read lesson content: %w", err)
	}
	return string(b), nil
}
