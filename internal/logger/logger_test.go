package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "kcheck.log")
	cfg := DefaultConfig()
	cfg.File = path
	cfg.Level = "debug"

	log, closeFn, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("phase", zap.String("to", "asking-question"))
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(raw), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, raw)
	}
	if rec["msg"] != "phase" || rec["to"] != "asking-question" || rec["level"] != "debug" {
		t.Errorf("record = %v", rec)
	}
}

func TestLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kcheck.log")
	var console bytes.Buffer
	log, closeFn, err := New(Config{Level: "warn", File: path, Console: &console})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("hidden")
	log.Warn("shown")
	closeFn()

	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "hidden") || !strings.Contains(string(raw), "shown") {
		t.Errorf("file output = %s", raw)
	}
	if !strings.Contains(console.String(), "WARN") || !strings.Contains(console.String(), "shown") {
		t.Errorf("console output = %q", console.String())
	}
}

func TestInvalidLevel(t *testing.T) {
	if _, _, err := New(Config{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	got, err := DefaultFile()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "kcheck", "kcheck.log"); got != want {
		t.Errorf("DefaultFile = %q, want %q", got, want)
	}
}
