package cleaner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nomadcxx/brandcheck/internal/scanner"
)

// QuarantineSuffix is appended to the image root's name to form the
// quarantine folder, created next to the image root
const QuarantineSuffix = "_未找到品牌图片"

// QuarantineDir returns the quarantine folder for imageRoot. Relative roots
// such as "." are resolved first so the folder lands beside the root.
func QuarantineDir(imageRoot string) string {
	cleaned, err := filepath.Abs(imageRoot)
	if err != nil {
		cleaned = filepath.Clean(imageRoot)
	}
	return filepath.Join(filepath.Dir(cleaned), filepath.Base(cleaned)+QuarantineSuffix)
}

// CopyReport represents the result of a quarantine copy
type CopyReport struct {
	Destination string      // Quarantine folder; empty when nothing was copied
	Operations  []Operation // One per unmatched file, in processing order
	Copied      int
	Errors      []error
}

// FailedCount returns the number of files that could not be copied
func (r CopyReport) FailedCount() int {
	return len(r.Errors)
}

// CopyUnmatched copies every unmatched file, flattened, into the quarantine
// folder next to imageRoot. Originals are never touched. A failed copy is
// recorded and the batch continues; only failing to create the folder
// itself is returned as an error. An empty list is a no-op.
func CopyUnmatched(files []scanner.UnmatchedFile, imageRoot string, pr *scanner.ProgressReporter) (CopyReport, error) {
	report := CopyReport{
		Operations: []Operation{},
		Errors:     []error{},
	}
	if len(files) == 0 {
		return report, nil
	}

	destDir := QuarantineDir(imageRoot)
	pr.Info("Copying files with no matching brand...")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		pr.LogError(err, "Failed to create quarantine folder")
		return report, fmt.Errorf("failed to create quarantine folder %s: %w", destDir, err)
	}
	report.Destination = destDir
	pr.Info("  Target folder: %s", destDir)
	pr.Start(len(files), fmt.Sprintf("Copying %d files...", len(files)))

	names := newNameAllocator()
	for i, file := range files {
		destName := names.Allocate(file.File.Name)
		op := Operation{
			Type:        "copy",
			Source:      file.File.Path,
			Destination: filepath.Join(destDir, destName),
			Timestamp:   time.Now(),
		}

		if err := copyFile(op.Source, op.Destination); err != nil {
			op.Err = fmt.Errorf("copy failed %s -> %s: %w", op.Source, op.Destination, err)
			report.Errors = append(report.Errors, op.Err)
			pr.LogError(err, fmt.Sprintf("  Copy failed: %s", file.File.Name))
		} else {
			op.Completed = true
			report.Copied++
			pr.Info("  Copied: %s -> %s", file.File.Name, destName)
		}

		report.Operations = append(report.Operations, op)
		pr.Update(i+1, file.File.Name)
	}

	pr.Complete(fmt.Sprintf("Copied %d of %d files to %s", report.Copied, len(files), destDir))
	return report, nil
}

// nameAllocator hands out flattened destination names. The first file keeps
// its name; later ones with the same name get "_1", "_2", ... before the
// extension, skipping any name already handed out in this run. Names are
// compared case-folded so "A.jpg" and "a.jpg" cannot land on the same file
// on a case-insensitive filesystem.
type nameAllocator struct {
	claimed  map[string]bool // Folded names handed out
	counters map[string]int  // Folded original name -> last suffix used
}

func newNameAllocator() *nameAllocator {
	return &nameAllocator{
		claimed:  make(map[string]bool),
		counters: make(map[string]int),
	}
}

// Allocate returns the destination name for a file called name
func (a *nameAllocator) Allocate(name string) string {
	folded := strings.ToLower(name)
	if !a.claimed[folded] {
		a.claimed[folded] = true
		return name
	}

	stem, ext := scanner.SplitExt(name)
	n := a.counters[folded]
	for {
		n++
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if key := strings.ToLower(candidate); !a.claimed[key] {
			a.counters[folded] = n
			a.claimed[key] = true
			return candidate
		}
	}
}

// copyFile copies content, permission bits and access/modification times.
// An existing destination is replaced; a partial copy is removed on failure.
func copyFile(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if existing, statErr := os.Lstat(dst); statErr == nil && !existing.IsDir() {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(dst)
		}
	}()

	// Use a larger buffer for better performance
	buf := make([]byte, 64*1024)
	if _, err = io.CopyBuffer(out, in, buf); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	if err = os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, accessTime(info), info.ModTime())
}
