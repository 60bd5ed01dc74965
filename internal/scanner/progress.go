package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel controls which progress messages reach the channel
type LogLevel int

const (
	LogLevelQuiet LogLevel = iota
	LogLevelNormal
	LogLevelVerbose
)

// String returns the config/flag spelling of the level
func (l LogLevel) String() string {
	switch l {
	case LogLevelQuiet:
		return "quiet"
	case LogLevelVerbose:
		return "verbose"
	default:
		return "normal"
	}
}

// ParseLogLevel parses "quiet", "normal" or "verbose" (case-insensitive)
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet":
		return LogLevelQuiet, nil
	case "normal", "":
		return LogLevelNormal, nil
	case "verbose":
		return LogLevelVerbose, nil
	default:
		return LogLevelNormal, fmt.Errorf("invalid log level: %s (must be quiet, normal, or verbose)", s)
	}
}

var (
	defaultLogLevelMu sync.RWMutex
	defaultLogLevel   = LogLevelNormal
)

// SetDefaultLogLevel sets the level new reporters start with
func SetDefaultLogLevel(l LogLevel) {
	defaultLogLevelMu.Lock()
	defaultLogLevel = l
	defaultLogLevelMu.Unlock()
}

// GetDefaultLogLevel returns the level new reporters start with
func GetDefaultLogLevel() LogLevel {
	defaultLogLevelMu.RLock()
	defer defaultLogLevelMu.RUnlock()
	return defaultLogLevel
}

// Severities carried by ScanProgress. Pure progress updates have no severity.
const (
	SeverityDebug = "debug"
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)

// ScanProgress represents a single progress or log event
type ScanProgress struct {
	Operation  string  // "brand_scan", "brand_check", "matching", "quarantine", "prune"
	Stage      string  // "counting_files", "scanning", "complete"
	Current    int     // Current file/item number
	Total      int     // Total files/items
	Percentage float64 // 0-100
	Message    string  // Human-readable status
	Severity   string  // "", debug, info, warn, error

	// Per-file facts, set on classification and copy events
	File   string
	Token  string
	Brand  string
	Reason string

	// Timing
	StartTime      time.Time
	ElapsedSeconds int
}

// IsLogLine reports whether the event is a log line rather than a bare progress tick
func (p ScanProgress) IsLogLine() bool {
	return p.Severity != ""
}

// ProgressReporter helps send progress updates. A nil reporter, or one
// without a channel, silently drops everything.
type ProgressReporter struct {
	ch        chan<- ScanProgress
	operation string
	startTime time.Time
	total     int
	level     LogLevel
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter(ch chan<- ScanProgress, operation string) *ProgressReporter {
	return &ProgressReporter{
		ch:        ch,
		operation: operation,
		startTime: time.Now(),
		level:     GetDefaultLogLevel(),
	}
}

// WithOperation returns a reporter sharing the channel and level but tagging a new operation
func (pr *ProgressReporter) WithOperation(operation string) *ProgressReporter {
	if pr == nil {
		return nil
	}
	return &ProgressReporter{
		ch:        pr.ch,
		operation: operation,
		startTime: time.Now(),
		level:     pr.level,
	}
}

// SetLogLevel overrides the level for this reporter
func (pr *ProgressReporter) SetLogLevel(l LogLevel) {
	if pr == nil {
		return
	}
	pr.level = l
}

// Start sends initial progress with total count
func (pr *ProgressReporter) Start(total int, message string) {
	if pr == nil {
		return
	}
	pr.total = total
	pr.send(pr.build(0, "scanning", message, ""))
}

// StageUpdate announces a new stage without touching counters
func (pr *ProgressReporter) StageUpdate(stage, message string) {
	if pr == nil {
		return
	}
	pr.send(pr.build(0, stage, message, ""))
}

// Update sends progress update
func (pr *ProgressReporter) Update(current int, message string) {
	if pr == nil {
		return
	}
	pr.send(pr.build(current, "scanning", message, ""))
}

// Complete sends completion message
func (pr *ProgressReporter) Complete(message string) {
	if pr == nil {
		return
	}
	p := pr.build(pr.total, "complete", message, SeverityInfo)
	p.Percentage = 100.0
	pr.emit(p)
}

// Send emits a log line if the reporter's level lets the severity through
func (pr *ProgressReporter) Send(severity, message string) {
	if pr == nil {
		return
	}
	pr.emit(pr.build(0, "scanning", message, severity))
}

// SendSeverityImmediate emits a log line regardless of level
func (pr *ProgressReporter) SendSeverityImmediate(severity, message string) {
	if pr == nil {
		return
	}
	pr.send(pr.build(0, "scanning", message, severity))
}

// Debug logs at debug severity
func (pr *ProgressReporter) Debug(format string, args ...interface{}) {
	pr.Send(SeverityDebug, fmt.Sprintf(format, args...))
}

// Info logs at info severity
func (pr *ProgressReporter) Info(format string, args ...interface{}) {
	pr.Send(SeverityInfo, fmt.Sprintf(format, args...))
}

// Warn logs at warn severity
func (pr *ProgressReporter) Warn(format string, args ...interface{}) {
	pr.Send(SeverityWarn, fmt.Sprintf(format, args...))
}

// LogError logs err with context at error severity
func (pr *ProgressReporter) LogError(err error, context string) {
	if err == nil {
		pr.Send(SeverityError, context)
		return
	}
	pr.Send(SeverityError, fmt.Sprintf("%s: %v", context, err))
}

// FileMatched records a file whose brand token resolved to a known brand
func (pr *ProgressReporter) FileMatched(current int, path, token, brand string) {
	if pr == nil {
		return
	}
	name := filepath.Base(path)
	p := pr.build(current, "scanning", fmt.Sprintf("✓ brand found: %s (brand: %s)", name, brand), SeverityInfo)
	p.File, p.Token, p.Brand = path, token, brand
	pr.emit(p)
}

// FileUnmatched records a file that will be quarantined
func (pr *ProgressReporter) FileUnmatched(current int, path, token string, reason UnmatchedReason) {
	if pr == nil {
		return
	}
	name := filepath.Base(path)
	var msg string
	if reason == ReasonNoBrandToken {
		msg = fmt.Sprintf("✗ brand not found: %s (no brand token)", name)
	} else {
		msg = fmt.Sprintf("✗ brand not found: %s (brand: %s)", name, token)
	}
	p := pr.build(current, "scanning", msg, SeverityInfo)
	p.File, p.Token, p.Reason = path, token, string(reason)
	pr.emit(p)
}

func (pr *ProgressReporter) build(current int, stage, message, severity string) ScanProgress {
	percentage := 0.0
	if pr.total > 0 {
		percentage = (float64(current) / float64(pr.total)) * 100.0
	}

	return ScanProgress{
		Operation:      pr.operation,
		Stage:          stage,
		Current:        current,
		Total:          pr.total,
		Percentage:     percentage,
		Message:        message,
		Severity:       severity,
		StartTime:      pr.startTime,
		ElapsedSeconds: int(time.Since(pr.startTime).Seconds()),
	}
}

// emit applies level filtering before sending
func (pr *ProgressReporter) emit(p ScanProgress) {
	if !pr.allows(p.Severity) {
		return
	}
	pr.send(p)
}

func (pr *ProgressReporter) allows(severity string) bool {
	switch pr.level {
	case LogLevelQuiet:
		return severity == SeverityError
	case LogLevelVerbose:
		return true
	default:
		return severity != SeverityDebug
	}
}

func (pr *ProgressReporter) send(p ScanProgress) {
	if pr.ch == nil {
		return
	}
	pr.ch <- p
}

// CountImageFiles counts supported images below root (for accurate progress).
// Unreadable subdirectories are skipped, matching MatchImages.
func CountImageFiles(root string) (int, error) {
	if _, err := os.Stat(root); err != nil {
		return 0, fmt.Errorf("image root not accessible: %s: %w", root, err)
	}

	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if isImageEntry(path, d) {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error counting files in %s: %w", root, err)
	}

	return count, nil
}
