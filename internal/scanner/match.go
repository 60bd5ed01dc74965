package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// MatchResult holds the classification of every image under the image root
type MatchResult struct {
	BrandCount int
	Processed  int
	Matched    int
	Unmatched  []UnmatchedFile // Discovery order
}

// UnmatchedCount returns len(Unmatched)
func (r *MatchResult) UnmatchedCount() int {
	return len(r.Unmatched)
}

// AllMatched reports whether no file needs quarantine
func (r *MatchResult) AllMatched() bool {
	return len(r.Unmatched) == 0
}

// MatchImages walks imageRoot depth-first in lexical order and classifies
// every supported image against index. Unsupported extensions are skipped
// silently and not counted. Unreadable subdirectories are logged and skipped.
func MatchImages(index *BrandIndex, imageRoot string, pr *ProgressReporter) (*MatchResult, error) {
	result := &MatchResult{BrandCount: index.Len()}

	err := filepath.WalkDir(imageRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == imageRoot {
				return err
			}
			pr.Warn("Skipping unreadable path %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !isImageEntry(path, d) {
			return nil
		}

		rel, err := filepath.Rel(imageRoot, path)
		if err != nil {
			rel = d.Name()
		}
		file := ImageFile{Path: path, Name: d.Name(), RelPath: rel}

		result.Processed++
		classify(index, file, result, pr)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk image root %s: %w", imageRoot, err)
	}

	return result, nil
}

// classify records one file as matched or unmatched
func classify(index *BrandIndex, file ImageFile, result *MatchResult, pr *ProgressReporter) {
	token, ok := ExtractBrandToken(file.Name)
	if !ok || token == "" {
		result.Unmatched = append(result.Unmatched, UnmatchedFile{File: file, Reason: ReasonNoBrandToken})
		pr.FileUnmatched(result.Processed, file.Path, "", ReasonNoBrandToken)
		return
	}

	brand, found := index.Lookup(token)
	if !found {
		result.Unmatched = append(result.Unmatched, UnmatchedFile{File: file, Reason: ReasonBrandNotFound, Token: token})
		pr.FileUnmatched(result.Processed, file.Path, token, ReasonBrandNotFound)
		return
	}

	result.Matched++
	pr.FileMatched(result.Processed, file.Path, token, brand)
	if candidates := index.Candidates(token); len(candidates) > 1 {
		pr.Debug("%q matches %d brands %v, using %q", token, len(candidates), candidates, brand)
	}
}
