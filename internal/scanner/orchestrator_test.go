package scanner

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestRunCheckFailureReasons(t *testing.T) {
	brandRoot := t.TempDir()
	makeTree(t, brandRoot, "Category/Brador/")
	emptyBrandRoot := t.TempDir()
	imageRoot := t.TempDir()

	tests := []struct {
		name      string
		brandRoot string
		imageRoot string
		reason    FailureReason
	}{
		{"no image root", brandRoot, "", ReasonNoImageRoot},
		{"no brand root", "", imageRoot, ReasonNoBrandRoot},
		{"both missing reports image first", "", "", ReasonNoImageRoot},
		{"brand scan failed", filepath.Join(brandRoot, "missing"), imageRoot, ReasonBrandScanFailed},
		{"no brands", emptyBrandRoot, imageRoot, ReasonNoBrandsFound},
		{"image root missing", brandRoot, filepath.Join(imageRoot, "missing"), ReasonImageRootMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RunCheck(tt.brandRoot, tt.imageRoot, nil)
			if result != nil {
				t.Errorf("expected nil result on failure, got %+v", result)
			}
			ce, ok := AsCheckError(err)
			if !ok {
				t.Fatalf("expected CheckError, got %v", err)
			}
			if ce.Reason != tt.reason {
				t.Errorf("reason = %s, want %s", ce.Reason, tt.reason)
			}
		})
	}
}

func TestRunCheckBrandScanFailureWrapsScanError(t *testing.T) {
	_, err := RunCheck(filepath.Join(t.TempDir(), "missing"), t.TempDir(), nil)
	if !IsScanError(err) {
		t.Errorf("expected wrapped ScanError, got %v", err)
	}
	var ce *CheckError
	if !errors.As(err, &ce) || ce.Error() == "" {
		t.Errorf("expected descriptive CheckError, got %v", err)
	}
}

func TestRunCheck(t *testing.T) {
	brandRoot := t.TempDir()
	makeTree(t, brandRoot, "Sports/Brador/", "Food/café/")
	imageRoot := t.TempDir()
	makeTree(t, imageRoot, "品牌_Brador_2025年03月16日_03_1.jpg", "x_Cafe_1.png", "x_Nike_1.jpg")

	progressCh := make(chan ScanProgress, 100)
	result, err := RunCheck(brandRoot, imageRoot, progressCh)
	if err != nil {
		t.Fatalf("RunCheck() error: %v", err)
	}
	close(progressCh)

	if result.BrandCount != 2 || result.Processed != 3 || result.Matched != 2 || result.UnmatchedCount() != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	var sawComplete bool
	for p := range progressCh {
		if p.Stage == "complete" && p.Operation == "matching" {
			sawComplete = true
		}
	}
	if !sawComplete {
		t.Error("expected matching completion event")
	}
}
