package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ignite/kcheck/internal/config"
	"github.com/ignite/kcheck/internal/oracle"
	"github.com/ignite/kcheck/internal/router"
	"github.com/ignite/kcheck/internal/screens/nextlesson"
	"github.com/ignite/kcheck/internal/store"
)

func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY", "KCHECK_LLM_PROVIDER"} {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func testCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().String("config", "", "")
	c.Flags().String("db", "", "")
	c.Flags().String("log-level", "", "")
	c.Flags().String("course-id", "", "")
	c.Flags().String("oracle", "", "")
	return c
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	isolate(t)
	c := testCommand()
	require.NoError(t, c.Flags().Set("db", "/tmp/x.db"))
	require.NoError(t, c.Flags().Set("course-id", "growth"))

	cfg, err := loadConfig(c, bindings{"session.course_id": "course-id", "oracle.mode": "oracle"})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/x.db", cfg.DB.Path)
	assert.Equal(t, "growth", cfg.Session.CourseID)
	assert.Equal(t, config.OracleHTTP, cfg.Oracle.Mode, "unset flag must not mask the default")
}

func TestLoadConfigRejectsBadMode(t *testing.T) {
	isolate(t)
	c := testCommand()
	require.NoError(t, c.Flags().Set("oracle", "carrier-pigeon"))

	_, err := loadConfig(c, bindings{"oracle.mode": "oracle"})
	assert.Error(t, err)
}

func TestAssessmentConfig(t *testing.T) {
	isolate(t)
	cfg, err := loadConfig(testCommand(), nil)
	require.NoError(t, err)

	opts := checkOptions{
		LessonName:     "User Interviews",
		NextLessonName: "Synthesis",
		CourseName:     "Product Management",
		ModuleNum:      2,
		LessonNum:      3,
		UserID:         "u-1",
		DisplayName:    "Sam Lee",
		Role:           "admin",
		FirstLesson:    true,
	}
	a := opts.assessmentConfig(cfg, "lesson", "prior")

	assert.Equal(t, "lesson", a.LessonContext)
	assert.Equal(t, "prior", a.PriorLessonsContext)
	assert.Equal(t, "product-manager", a.CourseID)
	assert.Equal(t, 2, a.ModuleNum)
	assert.Equal(t, 3, a.LessonNum)
	assert.True(t, a.IsFirstLesson)
	assert.True(t, a.UseBritishEnglish)
	assert.Equal(t, 800*time.Millisecond, a.GreetingDelay)
	assert.Equal(t, cfg.Reveal.Scheduler(), a.Reveal)
	assert.Equal(t, []string{"admin", "student"}, a.PrivilegedRoles)
}

func TestCheckHooks(t *testing.T) {
	h := checkHooks("Synthesis")

	msg := h.OnPass()()
	replace, ok := msg.(router.ReplaceScreenMsg)
	require.True(t, ok, "pass should replace the screen, got %T", msg)
	assert.IsType(t, &nextlesson.NextLessonScreen{}, replace.Screen)

	_, ok = h.OnClose()().(tea.QuitMsg)
	assert.True(t, ok, "close should quit")
}

func TestReadContext(t *testing.T) {
	got, err := readContext("")
	require.NoError(t, err)
	assert.Empty(t, got)

	path := filepath.Join(t.TempDir(), "lesson.md")
	require.NoError(t, os.WriteFile(path, []byte("# Lesson\nBody"), 0o644))
	got, err = readContext(path)
	require.NoError(t, err)
	assert.Equal(t, "# Lesson\nBody", got)

	_, err = readContext(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestNewOracleHTTPMode(t *testing.T) {
	isolate(t)
	cfg, err := loadConfig(testCommand(), nil)
	require.NoError(t, err)

	o, err := newOracle(testCommand(), cfg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &oracle.HTTPClient{}, o)
}

func TestOpenStoreCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kcheck.db")
	s, err := openStore(config.Config{DB: config.DBConfig{Path: path}})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.ResultRepo().ListResults(t.Context(), store.ResultFilter{})
	assert.NoError(t, err)
	assert.FileExists(t, path)
}
