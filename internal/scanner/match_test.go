package scanner

import (
	"path/filepath"
	"testing"
)

func buildIndex(brands ...string) *BrandIndex {
	index := NewBrandIndex()
	for _, b := range brands {
		index.Add(b)
	}
	return index
}

func TestMatchImages(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root,
		"品牌_Brador_2025年03月16日_03_1.jpg",
		"a/x_CAFE_1.PNG",
		"a/x_Nike_1.jpg",
		"b/noUnderscore.jpeg",
		"b/x__empty.gif",
		"b/x_Brador_2.txt",
		"b/notes.md",
	)

	index := buildIndex("Brador", "café")
	result, err := MatchImages(index, root, nil)
	if err != nil {
		t.Fatalf("MatchImages() error: %v", err)
	}

	if result.Processed != 5 {
		t.Errorf("expected 5 processed images, got %d", result.Processed)
	}
	if result.Matched != 2 {
		t.Errorf("expected 2 matched, got %d", result.Matched)
	}
	if result.UnmatchedCount() != 3 {
		t.Fatalf("expected 3 unmatched, got %d", result.UnmatchedCount())
	}

	// Depth-first lexical order: a/ then b/
	expected := []struct {
		rel    string
		reason UnmatchedReason
		token  string
	}{
		{"a/x_Nike_1.jpg", ReasonBrandNotFound, "Nike"},
		{"b/noUnderscore.jpeg", ReasonNoBrandToken, ""},
		{"b/x__empty.gif", ReasonNoBrandToken, ""},
	}
	for i, want := range expected {
		got := result.Unmatched[i]
		if got.File.RelPath != filepath.FromSlash(want.rel) {
			t.Errorf("unmatched[%d] = %s, want %s", i, got.File.RelPath, want.rel)
		}
		if got.Reason != want.reason {
			t.Errorf("unmatched[%d] reason = %s, want %s", i, got.Reason, want.reason)
		}
		if got.Token != want.token {
			t.Errorf("unmatched[%d] token = %q, want %q", i, got.Token, want.token)
		}
	}
}

func TestMatchImagesLogsEveryClassification(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "x_Brador_1.jpg", "x_Nike_1.jpg", "plain.jpg")

	progressCh := make(chan ScanProgress, 100)
	pr := NewProgressReporter(progressCh, "matching")
	pr.SetLogLevel(LogLevelNormal)

	if _, err := MatchImages(buildIndex("Brador"), root, pr); err != nil {
		t.Fatalf("MatchImages() error: %v", err)
	}
	close(progressCh)

	var events []ScanProgress
	for p := range progressCh {
		if p.File != "" {
			events = append(events, p)
		}
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 per-file events, got %d", len(events))
	}

	// Lexical order: plain.jpg, x_Brador_1.jpg, x_Nike_1.jpg
	if events[0].Reason != string(ReasonNoBrandToken) {
		t.Errorf("expected no_brand_token for plain.jpg, got %q", events[0].Reason)
	}
	if events[1].Brand != "Brador" || events[1].Token != "Brador" {
		t.Errorf("expected Brador match event, got %+v", events[1])
	}
	if events[2].Reason != string(ReasonBrandNotFound) || events[2].Token != "Nike" {
		t.Errorf("expected brand_not_found for Nike, got %+v", events[2])
	}
}

func TestMatchImagesEmptyRoot(t *testing.T) {
	result, err := MatchImages(buildIndex("Brador"), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("MatchImages() error: %v", err)
	}
	if result.Processed != 0 || !result.AllMatched() {
		t.Errorf("expected nothing processed, got %+v", result)
	}
}

func TestCountImageFiles(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "a.jpg", "sub/b.PNG", "sub/c.txt", "sub/deeper/d.tif")

	count, err := CountImageFiles(root)
	if err != nil {
		t.Fatalf("CountImageFiles() error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 images, got %d", count)
	}

	if _, err := CountImageFiles(filepath.Join(root, "missing")); err == nil {
		t.Error("expected error for missing root")
	}
}
