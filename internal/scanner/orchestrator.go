package scanner

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// FailureReason classifies why a check could not run
type FailureReason string

const (
	ReasonNoImageRoot      FailureReason = "no_image_root"
	ReasonNoBrandRoot      FailureReason = "no_brand_root"
	ReasonBrandScanFailed  FailureReason = "brand_scan_failed"
	ReasonNoBrandsFound    FailureReason = "no_brands_found"
	ReasonImageRootMissing FailureReason = "image_root_missing"
	ReasonUnexpected       FailureReason = "unexpected"
)

// CheckError is a terminal failure of a check run. No files have been
// copied when it is returned from RunCheck.
type CheckError struct {
	Reason FailureReason
	Path   string
	Err    error
}

func (e *CheckError) Error() string {
	var msg string
	switch e.Reason {
	case ReasonNoImageRoot:
		msg = "no image root selected"
	case ReasonNoBrandRoot:
		msg = "no brand root selected"
	case ReasonBrandScanFailed:
		msg = "failed to scan brand root, check that it is correct"
	case ReasonNoBrandsFound:
		msg = "no brand directories found under brand root"
	case ReasonImageRootMissing:
		msg = "image root does not exist"
	default:
		msg = "unexpected error"
	}
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CheckError) Unwrap() error { return e.Err }

// AsCheckError extracts a *CheckError from err
func AsCheckError(err error) (*CheckError, bool) {
	var e *CheckError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// RunCheck builds the brand index and classifies every image under imageRoot.
// Root validation and the brand scan happen before any image is touched.
func RunCheck(brandRoot, imageRoot string, progressCh chan<- ScanProgress) (*MatchResult, error) {
	pr := NewProgressReporter(progressCh, "brand_scan")
	return RunCheckWithReporter(brandRoot, imageRoot, pr)
}

// RunCheckWithReporter is RunCheck with a caller-configured reporter
func RunCheckWithReporter(brandRoot, imageRoot string, pr *ProgressReporter) (*MatchResult, error) {
	if strings.TrimSpace(imageRoot) == "" {
		return nil, &CheckError{Reason: ReasonNoImageRoot}
	}
	if strings.TrimSpace(brandRoot) == "" {
		return nil, &CheckError{Reason: ReasonNoBrandRoot}
	}

	// Stage 1: brand scan
	pr.Info("Scanning brand directory...")
	index, err := BuildBrandIndex(brandRoot)
	if err != nil {
		pr.LogError(err, "Brand scan failed")
		return nil, &CheckError{Reason: ReasonBrandScanFailed, Path: brandRoot, Err: err}
	}
	if index.Len() == 0 {
		pr.Warn("No brand subdirectories found under %s", brandRoot)
		return nil, &CheckError{Reason: ReasonNoBrandsFound, Path: brandRoot}
	}
	pr.Info("Loaded %d brands, processing images...", index.Len())
	pr.Debug("Brands: %s", strings.Join(index.Brands(), ", "))
	for _, c := range index.Collisions() {
		pr.Debug("Brands %v share key %q; %q wins", c.Brands, c.Key, c.Brands[0])
	}

	// Stage 2: image root
	info, err := os.Stat(imageRoot)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("not a directory")
		}
		pr.LogError(err, "Image root missing")
		return nil, &CheckError{Reason: ReasonImageRootMissing, Path: imageRoot, Err: err}
	}

	// Stage 3: match
	mpr := pr.WithOperation("matching")
	mpr.StageUpdate("counting_files", "Counting image files...")
	total, err := CountImageFiles(imageRoot)
	if err != nil {
		return nil, &CheckError{Reason: ReasonUnexpected, Path: imageRoot, Err: err}
	}
	mpr.Start(total, fmt.Sprintf("Checking %d images...", total))

	result, err := MatchImages(index, imageRoot, mpr)
	if err != nil {
		return nil, &CheckError{Reason: ReasonUnexpected, Path: imageRoot, Err: err}
	}

	mpr.Complete(fmt.Sprintf("Checked %d images: %d matched, %d unmatched",
		result.Processed, result.Matched, result.UnmatchedCount()))
	return result, nil
}
