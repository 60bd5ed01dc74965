package scanner

import (
	"io/fs"
	"os"
	"strings"
)

// supportedImageExts is the fixed set of extensions that are checked
var supportedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

// UnmatchedReason explains why a file is quarantined
type UnmatchedReason string

const (
	ReasonNoBrandToken  UnmatchedReason = "no_brand_token"
	ReasonBrandNotFound UnmatchedReason = "brand_not_found"
)

// ImageFile is one candidate image found under the image root
type ImageFile struct {
	Path    string // Absolute or root-joined path
	Name    string // Base filename
	RelPath string // Path relative to the image root
}

// UnmatchedFile is an image whose brand could not be verified
type UnmatchedFile struct {
	File   ImageFile
	Reason UnmatchedReason
	Token  string // Extracted token; empty for ReasonNoBrandToken
}

// IsImageFile reports whether name has a supported image extension (case-insensitive)
func IsImageFile(name string) bool {
	return supportedImageExts[strings.ToLower(extension(name))]
}

// SupportedImageExtensions returns the checked extensions, without dots
func SupportedImageExtensions() []string {
	return []string{"jpg", "jpeg", "png", "gif", "bmp", "webp", "tiff", "tif"}
}

// isImageEntry reports whether a walked entry is an image file. Symlinks are
// resolved so a link to a directory is never treated as a file; a dangling
// link still counts and fails later at copy time.
func isImageEntry(path string, d fs.DirEntry) bool {
	if d.IsDir() || !IsImageFile(d.Name()) {
		return false
	}
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			return false
		}
	}
	return true
}
