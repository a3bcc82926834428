package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"feastly/internal/platform/logging"
)

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.New("warn", &buf)
	logger.Info("hidden")
	logger.Named("engine").Warn("persist feast windows failed", "error", "disk full")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "feastly.engine") || !strings.Contains(out, "disk full") {
		t.Fatalf("expected named warn line, got %s", out)
	}
}

func TestNewFileAppends(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "feastly.log")
	logger, closer, err := logging.NewFile("info", path)
	if err != nil {
		t.Fatalf("new file: %v", err)
	}
	logger.Info("started")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(raw), "started") {
		t.Fatalf("expected log line in file, got %q err=%v", raw, err)
	}
}
