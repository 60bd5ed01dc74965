package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Nomadcxx/brandcheck/internal/cleaner"
	"github.com/Nomadcxx/brandcheck/internal/config"
	"github.com/Nomadcxx/brandcheck/internal/reporter"
	"github.com/Nomadcxx/brandcheck/internal/scanner"
	"github.com/Nomadcxx/brandcheck/internal/session"
	"github.com/Nomadcxx/brandcheck/internal/ui"
)

func TestLogLevelCLIIntegration(t *testing.T) {
	defer scanner.SetDefaultLogLevel(scanner.LogLevelNormal)

	tests := []struct {
		quiet    bool
		verbose  bool
		expected scanner.LogLevel
		wantErr  bool
	}{
		{false, false, scanner.LogLevelNormal, false},
		{true, false, scanner.LogLevelQuiet, false},
		{false, true, scanner.LogLevelVerbose, false},
		{true, true, scanner.LogLevelNormal, true},
	}

	for _, tt := range tests {
		scanner.SetDefaultLogLevel(scanner.LogLevelNormal)
		err := applyLogLevelFlags(tt.quiet, tt.verbose)
		if (err != nil) != tt.wantErr {
			t.Errorf("applyLogLevelFlags(%v, %v) error = %v, wantErr %v", tt.quiet, tt.verbose, err, tt.wantErr)
		}
		if got := scanner.GetDefaultLogLevel(); got != tt.expected {
			t.Errorf("applyLogLevelFlags(%v, %v) level = %v, want %v", tt.quiet, tt.verbose, got, tt.expected)
		}
	}
}

func TestResolveRequest(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.BrandRoot = "/cfg/brands"
	cfg.Paths.ImageRoot = "/cfg/images"

	req := resolveRequest(cfg, "", "")
	if req.BrandRoot != "/cfg/brands" || req.ImageRoot != "/cfg/images" {
		t.Errorf("expected configured roots, got %+v", req)
	}

	req = resolveRequest(cfg, "/flag/brands", "")
	if req.BrandRoot != "/flag/brands" || req.ImageRoot != "/cfg/images" {
		t.Errorf("expected brand flag to override, got %+v", req)
	}

	req = resolveRequest(config.DefaultConfig(), "", "/flag/images")
	if req.BrandRoot != "" || req.ImageRoot != "/flag/images" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name     string
		outcome  *session.Outcome
		err      error
		expected int
	}{
		{"failure", nil, &scanner.CheckError{Reason: scanner.ReasonNoImageRoot}, exitFailed},
		{"in progress", nil, session.ErrRunInProgress, exitFailed},
		{"all matched", &session.Outcome{Status: session.StatusAllMatched}, nil, exitOK},
		{"copied", &session.Outcome{Status: session.StatusCopied}, nil, exitOK},
		{"partial", &session.Outcome{Status: session.StatusPartial}, nil, exitPartial},
	}

	for _, tt := range tests {
		if got := exitCodeFor(tt.outcome, tt.err); got != tt.expected {
			t.Errorf("%s: exitCodeFor() = %d, want %d", tt.name, got, tt.expected)
		}
	}
}

func TestPrintProgressSkipsTicks(t *testing.T) {
	var buf bytes.Buffer
	printProgress(&buf, scanner.ScanProgress{Message: "Checking 10 images...", Total: 10})
	printProgress(&buf, scanner.ScanProgress{Message: "Loaded 3 brands, processing images...", Severity: scanner.SeverityInfo})
	printProgress(&buf, scanner.ScanProgress{Message: "Skipping unreadable path", Severity: scanner.SeverityWarn})

	out := buf.String()
	if strings.Contains(out, "Checking 10 images") {
		t.Error("bare progress ticks should not be printed")
	}
	if !strings.Contains(out, "[INFO] Loaded 3 brands") {
		t.Errorf("expected info line, got:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] Skipping unreadable path") {
		t.Errorf("expected warn line, got:\n%s", out)
	}
}

func TestRunWithPrinter(t *testing.T) {
	var buf bytes.Buffer
	want := errors.New("boom")

	_, err := runWithPrinter(&buf, func(events chan<- scanner.ScanProgress) (*session.Outcome, error) {
		events <- scanner.ScanProgress{Message: "first", Severity: scanner.SeverityInfo}
		events <- scanner.ScanProgress{Message: "second", Severity: scanner.SeverityError}
		return nil, want
	})

	if !errors.Is(err, want) {
		t.Errorf("expected error to pass through, got %v", err)
	}
	// Every event is printed before runWithPrinter returns
	out := buf.String()
	if !strings.Contains(out, "first") || !strings.Contains(out, "[FAIL] second") {
		t.Errorf("missing printed events:\n%s", out)
	}
}

func TestPrintSummary(t *testing.T) {
	outcome := &session.Outcome{
		Status: session.StatusPartial,
		Result: &scanner.MatchResult{
			Processed: 4,
			Matched:   2,
			Unmatched: make([]scanner.UnmatchedFile, 2),
		},
		Copy: cleaner.CopyReport{
			Destination: "/data/images_未找到品牌图片",
			Copied:      1,
			Errors:      []error{errors.New("denied")},
		},
		ReportPath: "/reports/r.json",
	}

	var buf bytes.Buffer
	printSummary(&buf, outcome)
	out := buf.String()

	for _, want := range []string{
		"Processed: 4  Matched: 2  Unmatched: 2  Copied: 1",
		"Copied 1 files to /data/images_未找到品牌图片, 1 failed",
		"brandcheck view /reports/r.json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func finishedCheck(t *testing.T, outcome *session.Outcome, err error) ui.CheckModel {
	t.Helper()
	m := ui.NewCheckModel(session.New(nil), session.Request{BrandRoot: "/b", ImageRoot: "/i"})
	ret, _ := m.Update(session.Completion{Outcome: outcome, Err: err})
	return ret.(ui.CheckModel)
}

func TestFinishTUI(t *testing.T) {
	partial := &session.Outcome{
		RunID:  "run-1",
		Status: session.StatusPartial,
		Result: &scanner.MatchResult{
			Processed: 2,
			Unmatched: make([]scanner.UnmatchedFile, 2),
		},
		Copy: cleaner.CopyReport{
			Destination: "/data/images_未找到品牌图片",
			Copied:      1,
			Errors:      []error{errors.New("denied")},
		},
	}

	t.Run("check screen", func(t *testing.T) {
		var out, errOut bytes.Buffer
		code := finishTUI(&out, &errOut, finishedCheck(t, partial, nil))
		if code != exitPartial {
			t.Errorf("exit code = %d, want %d", code, exitPartial)
		}
		if !strings.Contains(out.String(), "Copied: 1") {
			t.Errorf("expected summary, got %q", out.String())
		}
	})

	t.Run("quit from report viewer", func(t *testing.T) {
		m := finishedCheck(t, partial, nil)
		var final tea.Model
		final, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
		if _, ok := final.(ui.ReportModel); !ok {
			t.Fatalf("expected ReportModel after R, got %T", final)
		}
		final, _ = final.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

		var out, errOut bytes.Buffer
		code := finishTUI(&out, &errOut, final)
		if code != exitPartial {
			t.Errorf("exit code = %d, want %d", code, exitPartial)
		}
		if !strings.Contains(out.String(), "Processed: 2") {
			t.Errorf("expected summary, got %q", out.String())
		}
	})

	t.Run("failure", func(t *testing.T) {
		var out, errOut bytes.Buffer
		err := &scanner.CheckError{Reason: scanner.ReasonNoBrandsFound, Path: "/b"}
		code := finishTUI(&out, &errOut, finishedCheck(t, nil, err))
		if code != exitFailed {
			t.Errorf("exit code = %d, want %d", code, exitFailed)
		}
		if !strings.Contains(errOut.String(), "Check failed") {
			t.Errorf("expected failure message, got %q", errOut.String())
		}
	})

	t.Run("saved report", func(t *testing.T) {
		var out, errOut bytes.Buffer
		if code := finishTUI(&out, &errOut, ui.NewReportModel(reporter.Report{})); code != exitOK {
			t.Errorf("exit code = %d, want %d", code, exitOK)
		}
		if out.Len() != 0 {
			t.Errorf("expected no summary for a saved report, got %q", out.String())
		}
	})
}

func TestHelpListsExtensionsAndJunkFiles(t *testing.T) {
	check := checkLongDescription()
	for _, ext := range scanner.SupportedImageExtensions() {
		if !strings.Contains(check, ext) {
			t.Errorf("check help missing extension %q", ext)
		}
	}

	prune := pruneLongDescription()
	for _, name := range cleaner.IgnorableFiles() {
		if !strings.Contains(prune, name) {
			t.Errorf("prune help missing junk file %q", name)
		}
	}
	if !strings.Contains(prune, "50 passes") {
		t.Errorf("prune help missing pass cap:\n%s", prune)
	}
}
