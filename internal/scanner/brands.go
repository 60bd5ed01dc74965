package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ScanError means the brand root could not be read
type ScanError struct {
	Root string
	Path string // Directory that failed; equals Root for root-level failures
	Err  error
}

func (e *ScanError) Error() string {
	if e.Path != "" && e.Path != e.Root {
		return fmt.Sprintf("brand scan failed in %s (root %s): %v", e.Path, e.Root, e.Err)
	}
	return fmt.Sprintf("brand scan failed for %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// IsScanError reports whether err is (or wraps) a *ScanError
func IsScanError(err error) bool {
	var e *ScanError
	return errors.As(err, &e)
}

// BrandIndex maps normalized brand keys to canonical brand names.
// Names sharing a key keep scan order; the first one wins lookups.
type BrandIndex struct {
	byKey  map[string][]string
	brands []string
	seen   map[string]bool
}

// NewBrandIndex returns an empty index
func NewBrandIndex() *BrandIndex {
	return &BrandIndex{
		byKey: make(map[string][]string),
		seen:  make(map[string]bool),
	}
}

// Add inserts a brand name. Exact duplicates are ignored, so a brand found
// under several categories is indexed once.
func (bi *BrandIndex) Add(brand string) {
	if bi.seen[brand] {
		return
	}
	bi.seen[brand] = true
	bi.brands = append(bi.brands, brand)

	key := NormalizeText(brand)
	bi.byKey[key] = append(bi.byKey[key], brand)
}

// Lookup returns the first-inserted brand whose key matches token
func (bi *BrandIndex) Lookup(token string) (string, bool) {
	candidates := bi.Candidates(token)
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[0], true
}

// Candidates returns every brand sharing token's key, in scan order
func (bi *BrandIndex) Candidates(token string) []string {
	if bi == nil || token == "" {
		return nil
	}
	return bi.byKey[NormalizeText(token)]
}

// Len returns the number of distinct brand names
func (bi *BrandIndex) Len() int {
	if bi == nil {
		return 0
	}
	return len(bi.brands)
}

// Brands returns brand names in scan order
func (bi *BrandIndex) Brands() []string {
	if bi == nil {
		return nil
	}
	out := make([]string, len(bi.brands))
	copy(out, bi.brands)
	return out
}

// BrandCollision lists brands that normalize to the same key, in scan order
type BrandCollision struct {
	Key    string
	Brands []string
}

// Collisions returns keys that more than one brand normalizes to, ordered
// by the scan position of each key's first brand
func (bi *BrandIndex) Collisions() []BrandCollision {
	if bi == nil {
		return nil
	}
	var out []BrandCollision
	reported := make(map[string]bool)
	for _, brand := range bi.brands {
		key := NormalizeText(brand)
		if reported[key] || len(bi.byKey[key]) < 2 {
			continue
		}
		reported[key] = true
		out = append(out, BrandCollision{Key: key, Brands: append([]string(nil), bi.byKey[key]...)})
	}
	return out
}

// BuildBrandIndex scans root/<category>/<brand> and indexes every brand
// directory. Files are ignored at both levels and nothing deeper is read.
// An empty index is returned without error; callers decide whether that is fatal.
func BuildBrandIndex(root string) (*BrandIndex, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &ScanError{Root: root, Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Root: root, Path: root, Err: fmt.Errorf("not a directory")}
	}

	categories, err := os.ReadDir(root)
	if err != nil {
		return nil, &ScanError{Root: root, Path: root, Err: err}
	}

	index := NewBrandIndex()
	for _, category := range categories {
		categoryPath := filepath.Join(root, category.Name())
		if !isDirEntry(categoryPath, category) {
			continue
		}

		brands, err := os.ReadDir(categoryPath)
		if err != nil {
			return nil, &ScanError{Root: root, Path: categoryPath, Err: err}
		}

		for _, brand := range brands {
			if isDirEntry(filepath.Join(categoryPath, brand.Name()), brand) {
				index.Add(brand.Name())
			}
		}
	}

	return index, nil
}

// isDirEntry follows symlinks, so a link to a directory counts as one
func isDirEntry(path string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
