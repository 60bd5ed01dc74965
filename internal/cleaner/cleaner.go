package cleaner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Operation represents a single filesystem operation
type Operation struct {
	Type        string    // "copy", "rmdir", "remove"
	Source      string    // Original path
	Destination string    // New path (for copy)
	Timestamp   time.Time
	Completed   bool
	Err         error `json:"-"`
}

// Failed reports whether the operation was attempted and did not complete
func (op Operation) Failed() bool {
	return op.Err != nil
}

// Config holds cleaner configuration
type Config struct {
	DryRun         bool
	MaxPasses      int      // Prune pass cap
	IgnoreFiles    []string // Extra filenames treated as junk, on top of the built-in set
	ProtectedPaths []string
	LogPath        string // Optional operation log; empty disables it
}

// DefaultConfig returns safe default configuration
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	protected := []string{
		"/",
		// System directories
		"/usr", "/etc", "/bin", "/sbin", "/boot",
		"/sys", "/proc", "/dev", "/run",
		"/lib", "/lib32", "/lib64", "/libx32",
		"/var", "/opt", "/srv", "/home", "/root",
		"/Users", "/System", "/Library", "/Applications",
		// Windows system paths (for cross-platform safety)
		"C:\\", "C:\\Windows", "C:\\Program Files", "C:\\Program Files (x86)", "C:\\Users",
	}
	if home != "" {
		protected = append(protected, home)
	}

	return Config{
		DryRun:         false,
		MaxPasses:      MaxPrunePasses,
		ProtectedPaths: protected,
	}
}

// isProtectedPath reports whether path is one of the protected roots. Only
// the roots themselves are refused; their subdirectories are fair game.
func isProtectedPath(path string, protected []string) bool {
	cleaned := filepath.Clean(path)
	for _, p := range protected {
		if strings.EqualFold(cleaned, filepath.Clean(p)) {
			return true
		}
	}
	return false
}

// WriteOperationLog appends completed operations to logPath, one
// "RFC3339|type|source|destination" line each
func WriteOperationLog(ops []Operation, logPath string) error {
	if logPath == "" {
		return nil
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return err
	}

	// Open log file (append mode) with user-only permissions
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, op := range ops {
		if !op.Completed {
			continue
		}

		line := fmt.Sprintf("%s|%s|%s|%s\n",
			op.Timestamp.Format(time.RFC3339),
			op.Type,
			op.Source,
			op.Destination)

		if _, err := f.WriteString(line); err != nil {
			return err
		}
	}

	return nil
}
