package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hylla/cardflow/internal/config"
)

// TestRuntimeLoggerCanMuteConsoleSink verifies console output can be suppressed while other sinks remain active.
func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/cardflow.db").Logging

	logger, err := newRuntimeLogger(&console, "cardflow", false, cfg, func() time.Time {
		return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Info("after")
	logger.Debug("below level")

	out := console.String()
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("expected console log to include unmuted events, got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
	if strings.Contains(out, "below level") {
		t.Fatalf("expected debug event filtered at info level, got %q", out)
	}
	if logger.DevLogPath() != "" {
		t.Fatalf("expected no dev log outside dev mode, got %q", logger.DevLogPath())
	}
}

// TestRuntimeLoggerWritesDevFile verifies dev mode adds a logfmt file sink.
func TestRuntimeLoggerWritesDevFile(t *testing.T) {
	cfg := config.Default("/tmp/cardflow.db").Logging
	cfg.DevFile.Dir = t.TempDir()

	var console bytes.Buffer
	logger, err := newRuntimeLogger(&console, "cardflow", true, cfg, func() time.Time {
		return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	logger.SetConsoleEnabled(false)
	logger.Warn("card rejected", "card_id", 7)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	want := filepath.Join(cfg.DevFile.Dir, "cardflow-20260302.log")
	if logger.DevLogPath() != want {
		t.Fatalf("expected dev log %q, got %q", want, logger.DevLogPath())
	}
	content, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "card rejected") || !strings.Contains(string(content), "card_id=7") {
		t.Fatalf("expected logfmt event in dev log, got %q", string(content))
	}
	if console.Len() != 0 {
		t.Fatalf("expected muted console, got %q", console.String())
	}
}

// TestRuntimeLoggerRejectsUnknownLevel verifies level parsing errors surface.
func TestRuntimeLoggerRejectsUnknownLevel(t *testing.T) {
	cfg := config.Default("/tmp/cardflow.db").Logging
	cfg.Level = "loud"
	if _, err := newRuntimeLogger(nil, "cardflow", false, cfg, nil); err == nil {
		t.Fatal("expected unknown level error")
	}
}

// TestWorkspaceRootFromUsesNearestMarker verifies workspace-root resolution behavior.
func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "cardflow")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	got := workspaceRootFrom(nested)
	if filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

// TestDevLogFilePathAbsoluteDir verifies absolute dirs are used as-is with a dated file name.
func TestDevLogFilePathAbsoluteDir(t *testing.T) {
	dir := t.TempDir()
	got, err := devLogFilePath(dir, "card flow/dev", time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	want := filepath.Join(dir, "card-flow-dev-20260302.log")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

// TestSanitizeLogFileStem verifies unsafe characters are replaced and empty names fall back.
func TestSanitizeLogFileStem(t *testing.T) {
	cases := map[string]string{
		"cardflow":       "cardflow",
		" a/b\\c:d e ":   "a-b-c-d-e",
		"   ":            "cardflow",
		"/leading-slash": "leading-slash",
	}
	for in, want := range cases {
		if got := sanitizeLogFileStem(in); got != want {
			t.Fatalf("sanitizeLogFileStem(%q) = %q, want %q", in, got, want)
		}
	}
}
