package cleaner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestIsProtectedPath(t *testing.T) {
	protected := []string{"/usr", "/etc", "/home", "/"}

	tests := []struct {
		path     string
		expected bool
	}{
		{"/usr", true},
		{"/usr/", true},
		{"/etc", true},
		{"/", true},
		{"/home", true},
		{"/home/user/photos", false},
		{"/usr/share/something", false},
		{"/mnt/storage", false},
		{"/tmp/file", false},
	}

	for _, tt := range tests {
		result := isProtectedPath(tt.path, protected)
		if result != tt.expected {
			t.Errorf("isProtectedPath(%q) = %v, want %v", tt.path, result, tt.expected)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.DryRun {
		t.Error("expected DryRun to be false by default")
	}
	if config.MaxPasses != MaxPrunePasses {
		t.Errorf("expected MaxPasses %d, got %d", MaxPrunePasses, config.MaxPasses)
	}
	if !isProtectedPath("/", config.ProtectedPaths) {
		t.Error("expected filesystem root to be protected")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if !isProtectedPath(home, config.ProtectedPaths) {
			t.Error("expected home directory to be protected")
		}
	}
}

func TestWriteOperationLog(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "logs", "operations.log")

	ts := time.Date(2025, 3, 16, 10, 0, 0, 0, time.UTC)
	ops := []Operation{
		{Type: "copy", Source: "/a/x.jpg", Destination: "/b/x.jpg", Timestamp: ts, Completed: true},
		{Type: "copy", Source: "/a/y.jpg", Destination: "/b/y.jpg", Timestamp: ts, Err: errors.New("boom")},
		{Type: "rmdir", Source: "/a/empty", Timestamp: ts, Completed: true},
	}

	if err := WriteOperationLog(ops, logPath); err != nil {
		t.Fatalf("WriteOperationLog() error: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 completed operations logged, got %d: %q", len(lines), lines)
	}
	if lines[0] != "2025-03-16T10:00:00Z|copy|/a/x.jpg|/b/x.jpg" {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if lines[1] != "2025-03-16T10:00:00Z|rmdir|/a/empty|" {
		t.Errorf("unexpected second line: %q", lines[1])
	}

	// Appends on the next call
	if err := WriteOperationLog(ops[:1], logPath); err != nil {
		t.Fatalf("WriteOperationLog() second call error: %v", err)
	}
	data, _ = os.ReadFile(logPath)
	if strings.Count(string(data), "\n") != 3 {
		t.Errorf("expected 3 lines after append, got %q", string(data))
	}
}

func TestWriteOperationLogDisabled(t *testing.T) {
	if err := WriteOperationLog([]Operation{{Type: "copy", Completed: true}}, ""); err != nil {
		t.Errorf("empty log path should be a no-op, got %v", err)
	}
}

func TestOperationFailed(t *testing.T) {
	if (Operation{Completed: true}).Failed() {
		t.Error("completed operation reported as failed")
	}
	if !(Operation{Err: errors.New("x")}).Failed() {
		t.Error("operation with error not reported as failed")
	}
}
