package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Nomadcxx/brandcheck/internal/cleaner"
	"github.com/Nomadcxx/brandcheck/internal/scanner"
)

// Report represents a check run: counts, the unmatched files and where
// each one was copied
type Report struct {
	RunID       string           `json:"run_id"`
	Timestamp   time.Time        `json:"timestamp"`
	Status      string           `json:"status"`
	BrandRoot   string           `json:"brand_root"`
	ImageRoot   string           `json:"image_root"`
	BrandCount  int              `json:"brand_count"`
	Processed   int              `json:"processed"`
	Matched     int              `json:"matched"`
	Copied      int              `json:"copied"`
	CopyErrors  int              `json:"copy_errors"`
	Destination string           `json:"destination,omitempty"`
	Unmatched   []UnmatchedEntry `json:"unmatched"`
}

// UnmatchedEntry is one file that needs human review
type UnmatchedEntry struct {
	Path     string `json:"path"`
	RelPath  string `json:"rel_path"`
	Reason   string `json:"reason"`
	Token    string `json:"token,omitempty"`
	CopiedTo string `json:"copied_to,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UnmatchedCount returns the number of unmatched files
func (r Report) UnmatchedCount() int {
	return len(r.Unmatched)
}

// New builds a report from a finished check and its quarantine copy
func New(runID, brandRoot, imageRoot, status string, result *scanner.MatchResult, copied cleaner.CopyReport) Report {
	report := Report{
		RunID:       runID,
		Timestamp:   time.Now(),
		Status:      status,
		BrandRoot:   brandRoot,
		ImageRoot:   imageRoot,
		Copied:      copied.Copied,
		CopyErrors:  copied.FailedCount(),
		Destination: copied.Destination,
		Unmatched:   []UnmatchedEntry{},
	}
	if result == nil {
		return report
	}

	report.BrandCount = result.BrandCount
	report.Processed = result.Processed
	report.Matched = result.Matched

	// Operations line up with the unmatched list when a copy ran
	for i, file := range result.Unmatched {
		entry := UnmatchedEntry{
			Path:    file.File.Path,
			RelPath: file.File.RelPath,
			Reason:  string(file.Reason),
			Token:   file.Token,
		}
		if i < len(copied.Operations) {
			op := copied.Operations[i]
			if op.Completed {
				entry.CopiedTo = op.Destination
			} else if op.Err != nil {
				entry.Error = op.Err.Error()
			}
		}
		report.Unmatched = append(report.Unmatched, entry)
	}

	return report
}

// Save writes the report as JSON plus a plain-text summary into dir and
// returns the JSON path
func Save(report Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	base := report.Timestamp.Format("20060102_150405")
	if report.RunID != "" {
		base += "_" + report.RunID
	}
	jsonPath := filepath.Join(dir, base+".json")
	textPath := filepath.Join(dir, base+".txt")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	if err := os.WriteFile(textPath, []byte(buildReportContent(report)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report summary: %w", err)
	}

	return jsonPath, nil
}

// Load reads a JSON report written by Save
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &report, nil
}

// buildReportContent generates the report text
func buildReportContent(report Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("BRANDCHECK REPORT\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n", report.Timestamp.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Run ID: %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Brand Root: %s\n", report.BrandRoot))
	sb.WriteString(fmt.Sprintf("Image Root: %s\n", report.ImageRoot))
	sb.WriteString("\n")

	// Summary
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Status: %s\n", report.Status))
	sb.WriteString(fmt.Sprintf("Brands loaded: %d\n", report.BrandCount))
	sb.WriteString(fmt.Sprintf("Images processed: %d\n", report.Processed))
	sb.WriteString(fmt.Sprintf("Matched: %d\n", report.Matched))
	sb.WriteString(fmt.Sprintf("Unmatched: %d\n", report.UnmatchedCount()))
	sb.WriteString(fmt.Sprintf("Copied: %d\n", report.Copied))
	if report.CopyErrors > 0 {
		sb.WriteString(fmt.Sprintf("Copy failures: %d\n", report.CopyErrors))
	}
	if report.Destination != "" {
		sb.WriteString(fmt.Sprintf("Quarantine folder: %s\n", report.Destination))
	}
	sb.WriteString("\n")

	// Most frequent unknown brand tokens
	if missing := TopMissingBrands(report); len(missing) > 0 {
		sb.WriteString("TOP UNKNOWN BRANDS\n")
		sb.WriteString(strings.Repeat("=", 80) + "\n")
		for i, m := range missing {
			sb.WriteString(fmt.Sprintf("%d. %s - %d files\n", i+1, m.Token, m.Count))
		}
		sb.WriteString("\n")
	}

	if len(report.Unmatched) > 0 {
		sb.WriteString("UNMATCHED FILES\n")
		sb.WriteString(strings.Repeat("=", 80) + "\n")
		for _, entry := range report.Unmatched {
			sb.WriteString(formatUnmatched(entry))
		}
	}

	return sb.String()
}

// MissingBrand is a brand token that matched nothing, with its file count
type MissingBrand struct {
	Token string
	Count int
}

// TopMissingBrands returns the 15 most frequent tokens that matched no brand
func TopMissingBrands(report Report) []MissingBrand {
	counts := make(map[string]int)
	for _, entry := range report.Unmatched {
		if entry.Reason == string(scanner.ReasonBrandNotFound) {
			counts[entry.Token]++
		}
	}

	missing := make([]MissingBrand, 0, len(counts))
	for token, count := range counts {
		missing = append(missing, MissingBrand{Token: token, Count: count})
	}

	// Sort by count descending, then token
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Count != missing[j].Count {
			return missing[i].Count > missing[j].Count
		}
		return missing[i].Token < missing[j].Token
	})

	if len(missing) > 15 {
		return missing[:15]
	}
	return missing
}

// formatUnmatched formats one unmatched file for display
func formatUnmatched(entry UnmatchedEntry) string {
	var sb strings.Builder

	reason := "no brand token"
	if entry.Reason == string(scanner.ReasonBrandNotFound) {
		reason = "brand: " + entry.Token
	}
	sb.WriteString(fmt.Sprintf("  [%s] %s\n", reason, entry.RelPath))

	switch {
	case entry.CopiedTo != "":
		sb.WriteString(fmt.Sprintf("          -> %s\n", entry.CopiedTo))
	case entry.Error != "":
		sb.WriteString(fmt.Sprintf("          FAILED: %s\n", entry.Error))
	}

	return sb.String()
}
