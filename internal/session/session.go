package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Nomadcxx/brandcheck/internal/cleaner"
	"github.com/Nomadcxx/brandcheck/internal/config"
	"github.com/Nomadcxx/brandcheck/internal/reporter"
	"github.com/Nomadcxx/brandcheck/internal/scanner"
)

// ErrRunInProgress is returned when a check is started while another is running
var ErrRunInProgress = errors.New("a check is already in progress")

// Status is the completion state of a successful check
type Status string

const (
	StatusAllMatched Status = "all_matched" // Nothing to quarantine
	StatusCopied     Status = "copied"      // Every unmatched file copied
	StatusPartial    Status = "partial"     // Some copies failed
)

// Request names the roots for one check
type Request struct {
	BrandRoot string
	ImageRoot string
}

// resolved returns req with both roots made absolute, so every stage and the
// report see the same paths. Blank roots are left for validation.
func (r Request) resolved() Request {
	r.BrandRoot = absPath(r.BrandRoot)
	r.ImageRoot = absPath(r.ImageRoot)
	return r
}

func absPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Outcome is the result of a successful check
type Outcome struct {
	RunID      string
	Status     Status
	Result     *scanner.MatchResult
	Copy       cleaner.CopyReport
	ReportPath string // Empty unless a report was saved
}

// Summary holds the four counters shown after a run
type Summary struct {
	Processed int
	Matched   int
	Unmatched int
	Copied    int
}

// Summary returns the run's counters
func (o *Outcome) Summary() Summary {
	if o == nil || o.Result == nil {
		return Summary{}
	}
	return Summary{
		Processed: o.Result.Processed,
		Matched:   o.Result.Matched,
		Unmatched: o.Result.UnmatchedCount(),
		Copied:    o.Copy.Copied,
	}
}

// Completion carries the result of a Start call
type Completion struct {
	Outcome *Outcome
	Err     error
}

// Session runs checks one at a time
type Session struct {
	config *config.Config

	mu      sync.Mutex
	running bool
}

// New creates a session. The config's log level is applied unless the
// process default was already changed (CLI flags take precedence).
func New(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if scanner.GetDefaultLogLevel() == scanner.LogLevelNormal && cfg.Output.LogLevel != "" {
		if lvl, err := scanner.ParseLogLevel(cfg.Output.LogLevel); err == nil {
			scanner.SetDefaultLogLevel(lvl)
		}
	}

	return &Session{config: cfg}
}

// Running reports whether a check is in flight
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunInProgress
	}
	s.running = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Run executes a check synchronously. Progress events are sent on
// progressCh, which the caller must drain; it may be nil.
func (s *Session) Run(req Request, progressCh chan<- scanner.ScanProgress) (*Outcome, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	return s.execute(req, progressCh)
}

// Start runs a check on its own goroutine. The returned channel delivers
// exactly one Completion. A running check cannot be cancelled.
func (s *Session) Start(req Request, progressCh chan<- scanner.ScanProgress) (<-chan Completion, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}

	done := make(chan Completion, 1)
	go func() {
		outcome, err := s.execute(req, progressCh)
		s.release()
		done <- Completion{Outcome: outcome, Err: err}
		close(done)
	}()

	return done, nil
}

// execute runs the pipeline: check, quarantine copy, audit log, report.
// Panics surface as an unexpected CheckError.
func (s *Session) execute(req Request, progressCh chan<- scanner.ScanProgress) (outcome *Outcome, err error) {
	runID := uuid.NewString()
	pr := scanner.NewProgressReporter(progressCh, "brand_check")

	defer func() {
		if r := recover(); r != nil {
			outcome = nil
			err = &scanner.CheckError{Reason: scanner.ReasonUnexpected, Err: fmt.Errorf("panic: %v", r)}
			pr.LogError(err, "Check aborted")
		}
	}()

	req = req.resolved()
	result, err := scanner.RunCheckWithReporter(req.BrandRoot, req.ImageRoot, pr)
	if err != nil {
		return nil, err
	}

	outcome = &Outcome{
		RunID:  runID,
		Status: StatusAllMatched,
		Result: result,
	}

	if result.AllMatched() {
		pr.Info("All images have a matching brand")
	} else {
		copyReport, err := cleaner.CopyUnmatched(result.Unmatched, req.ImageRoot, pr.WithOperation("quarantine"))
		if err != nil {
			return nil, &scanner.CheckError{
				Reason: scanner.ReasonUnexpected,
				Path:   cleaner.QuarantineDir(req.ImageRoot),
				Err:    err,
			}
		}
		outcome.Copy = copyReport
		outcome.Status = StatusCopied
		if copyReport.FailedCount() > 0 {
			outcome.Status = StatusPartial
			pr.Warn("%d files could not be copied", copyReport.FailedCount())
		}

		if err := cleaner.WriteOperationLog(copyReport.Operations, s.config.Output.OperationLog); err != nil {
			pr.Warn("Failed to write operation log: %v", err)
		}
	}

	if s.config.Output.SaveReport {
		outcome.ReportPath = s.saveReport(req, outcome, pr)
	}

	return outcome, nil
}

// saveReport writes the run report. Failure is logged, not fatal.
func (s *Session) saveReport(req Request, outcome *Outcome, pr *scanner.ProgressReporter) string {
	dir, err := s.config.ReportDir()
	if err != nil {
		pr.LogError(err, "Failed to resolve report directory")
		return ""
	}

	report := reporter.New(outcome.RunID, req.BrandRoot, req.ImageRoot, string(outcome.Status), outcome.Result, outcome.Copy)
	path, err := reporter.Save(report, dir)
	if err != nil {
		pr.LogError(err, "Failed to save report")
		return ""
	}

	pr.Info("Report saved: %s", path)
	return path
}

// Prune removes empty directories below root using the session's prune
// settings. It shares the in-progress flag with checks.
func (s *Session) Prune(root string, dryRun bool, progressCh chan<- scanner.ScanProgress) (cleaner.PruneResult, error) {
	if err := s.acquire(); err != nil {
		return cleaner.PruneResult{}, err
	}
	defer s.release()

	cfg := cleaner.DefaultConfig()
	cfg.DryRun = dryRun
	cfg.MaxPasses = s.config.Prune.MaxPasses
	cfg.IgnoreFiles = s.config.Prune.ExtraIgnoreFiles
	cfg.LogPath = s.config.Output.OperationLog

	pr := scanner.NewProgressReporter(progressCh, "prune")
	return cleaner.PruneEmptyDirectories(root, cfg, pr)
}
