package cleaner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Nomadcxx/brandcheck/internal/scanner"
)

// MaxPrunePasses bounds the fixed-point loop in PruneEmptyDirectories
const MaxPrunePasses = 50

// defaultIgnorableFiles are files that do not keep a directory alive
var defaultIgnorableFiles = []string{".DS_Store", "Thumbs.db", ".gitkeep", ".gitignore"}

// IgnorableFiles returns the built-in junk filenames
func IgnorableFiles() []string {
	return append([]string(nil), defaultIgnorableFiles...)
}

// PruneResult represents the result of an empty-directory cleanup
type PruneResult struct {
	Root       string
	Deleted    int  // Directories removed (or, in dry-run, that would be)
	Passes     int  // Passes actually run
	CapReached bool // Last pass still deleted something
	DryRun     bool
	Operations []Operation
	Errors     []error
}

// PruneEmptyDirectories removes every directory below root that is empty
// once junk files are ignored, repeating bottom-up passes until a pass
// deletes nothing or the pass cap is hit. root itself is never removed.
//
// Symlinks are not followed, so a pass can never loop through a cycle.
// Per-directory failures are recorded in the result and skipped; the
// returned error is only for an unusable root.
func PruneEmptyDirectories(root string, config Config, pr *scanner.ProgressReporter) (PruneResult, error) {
	result := PruneResult{
		Root:       root,
		DryRun:     config.DryRun,
		Operations: []Operation{},
		Errors:     []error{},
	}

	if strings.TrimSpace(root) == "" {
		return result, fmt.Errorf("no directory given")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return result, fmt.Errorf("invalid path %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return result, fmt.Errorf("directory not accessible: %s: %w", root, err)
	}
	if !info.IsDir() {
		return result, fmt.Errorf("not a directory: %s", root)
	}
	if isProtectedPath(absRoot, config.ProtectedPaths) {
		return result, fmt.Errorf("refusing to prune protected path: %s", absRoot)
	}

	maxPasses := config.MaxPasses
	if maxPasses <= 0 || maxPasses > MaxPrunePasses {
		maxPasses = MaxPrunePasses
	}

	p := &pruner{
		root:   filepath.Clean(root),
		ignore: ignoreSet(config.IgnoreFiles),
		dryRun: config.DryRun,
		gone:   make(map[string]bool),
		pr:     pr,
		result: &result,
	}

	pr.Info("Cleaning up empty directories in '%s'...", root)
	for pass := 1; pass <= maxPasses; pass++ {
		result.Passes = pass
		deleted := p.runPass()
		pr.Debug("Pass %d removed %d directories", pass, deleted)

		if deleted == 0 {
			break
		}
		if pass == maxPasses {
			result.CapReached = true
			pr.Warn("Stopped after %d passes; some empty directories may remain", maxPasses)
		}
	}

	switch {
	case result.Deleted == 0:
		pr.Complete("No empty directories found to delete")
	case config.DryRun:
		pr.Complete(fmt.Sprintf("Would delete %d empty directories", result.Deleted))
	default:
		pr.Complete(fmt.Sprintf("Deleted %d empty directories", result.Deleted))
	}

	if !config.DryRun && config.LogPath != "" && len(result.Operations) > 0 {
		if err := WriteOperationLog(result.Operations, config.LogPath); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to write operation log: %w", err))
		}
	}

	return result, nil
}

// pruner carries the state of one PruneEmptyDirectories call
type pruner struct {
	root   string
	ignore map[string]bool
	dryRun bool
	gone   map[string]bool // Directories already removed (or simulated as removed)
	pr     *scanner.ProgressReporter
	result *PruneResult
}

func ignoreSet(extra []string) map[string]bool {
	set := make(map[string]bool, len(defaultIgnorableFiles)+len(extra))
	for _, name := range defaultIgnorableFiles {
		set[name] = true
	}
	for _, name := range extra {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = true
		}
	}
	return set
}

// runPass evaluates every directory deepest-first, so removing a child can
// make its parent eligible within the same pass
func (p *pruner) runPass() int {
	dirs := p.collectDirs()
	sort.SliceStable(dirs, func(i, j int) bool {
		di, dj := depth(dirs[i]), depth(dirs[j])
		if di != dj {
			return di > dj
		}
		return dirs[i] < dirs[j]
	})

	deleted := 0
	for _, dir := range dirs {
		junk, empty, err := p.inspect(dir)
		if err != nil {
			if os.IsNotExist(err) {
				p.pr.Debug("Already gone: %s", dir)
				continue
			}
			p.recordError(fmt.Errorf("failed to read %s: %w", dir, err))
			continue
		}
		if !empty {
			continue
		}
		if p.remove(dir, junk) {
			deleted++
		}
	}
	return deleted
}

// collectDirs lists every directory below root, excluding root
func (p *pruner) collectDirs() []string {
	var dirs []string
	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == p.root {
				return err
			}
			if !os.IsNotExist(err) {
				p.pr.Warn("Error accessing %s: %v", path, err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == p.root || !d.IsDir() {
			return nil
		}
		if p.gone[path] {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		p.recordError(fmt.Errorf("error during directory cleanup: %w", err))
	}
	return dirs
}

// inspect reports whether dir is empty apart from junk files, and lists the junk
func (p *pruner) inspect(dir string) (junk []string, empty bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, false, err
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if p.gone[full] {
			continue
		}
		if !entry.IsDir() && p.ignore[entry.Name()] {
			junk = append(junk, full)
			continue
		}
		return nil, false, nil
	}
	return junk, true, nil
}

// remove deletes junk files and then dir. It reports whether dir is gone
// because of this call.
func (p *pruner) remove(dir string, junk []string) bool {
	if p.dryRun {
		p.gone[dir] = true
		p.result.Deleted++
		p.result.Operations = append(p.result.Operations, Operation{
			Type:      "rmdir",
			Source:    dir,
			Timestamp: time.Now(),
			Completed: true,
		})
		p.pr.Info("Would remove empty directory: %s", dir)
		return true
	}

	for _, file := range junk {
		op := Operation{Type: "remove", Source: file, Timestamp: time.Now()}
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			op.Err = err
			p.result.Operations = append(p.result.Operations, op)
			p.recordError(fmt.Errorf("failed to remove %s: %w", file, err))
			return false
		}
		op.Completed = true
		p.result.Operations = append(p.result.Operations, op)
	}

	op := Operation{Type: "rmdir", Source: dir, Timestamp: time.Now()}
	if err := os.Remove(dir); err != nil {
		if os.IsNotExist(err) {
			p.gone[dir] = true
			p.pr.Debug("Already gone: %s", dir)
			return false
		}
		op.Err = err
		p.result.Operations = append(p.result.Operations, op)
		p.recordError(fmt.Errorf("failed to remove empty directory %s: %w", dir, err))
		return false
	}

	op.Completed = true
	p.result.Operations = append(p.result.Operations, op)
	p.gone[dir] = true
	p.result.Deleted++
	p.pr.Info("Removed empty directory: %s", dir)
	return true
}

func (p *pruner) recordError(err error) {
	p.result.Errors = append(p.result.Errors, err)
	p.pr.Warn("%v", err)
}

func depth(path string) int {
	return strings.Count(filepath.Clean(path), string(filepath.Separator))
}
