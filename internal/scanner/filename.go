package scanner

import (
	"path/filepath"
	"strings"
)

// brandTokenDelimiter separates the segments of "<prefix>_<brand>_<...rest>"
const brandTokenDelimiter = "_"

// ExtractBrandToken returns the brand segment of a filename such as
// "品牌_Brador_2025年03月16日_03_1.jpg" -> "Brador".
// The final extension is dropped, the rest split on "_", and the second
// segment returned verbatim. Names without an underscore yield ok=false.
func ExtractBrandToken(filename string) (string, bool) {
	parts := strings.Split(stripExtension(filename), brandTokenDelimiter)
	if len(parts) < 2 {
		return "", false
	}
	return parts[1], true
}

// stripExtension removes the final extension. Leading dots do not start an
// extension, so ".jpg" and "..jpg" are returned unchanged.
func stripExtension(name string) string {
	ext := extension(name)
	return strings.TrimSuffix(name, ext)
}

// extension is filepath.Ext, except that a name made only of leading dots
// plus a suffix (".jpg") has no extension.
func extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	if strings.Trim(strings.TrimSuffix(name, ext), ".") == "" {
		return ""
	}
	return ext
}

// SplitExt splits name into stem and final extension using the same rule as
// ExtractBrandToken: "a.tar.gz" -> ("a.tar", ".gz"), ".hidden" -> (".hidden", "").
func SplitExt(name string) (stem, ext string) {
	ext = extension(name)
	return strings.TrimSuffix(name, ext), ext
}
