package docfind

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Options controls document discovery.
type Options struct {
	Roots   []string // directories to walk; defaults to "."
	Include []string // path globs a file must match; defaults to **/*.tex
	Exclude []string // path globs that remove a file from the set
}

// Find walks the roots and returns every regular file matching the
// include filters, sorted and deduplicated. A root that is itself a file
// is taken as-is when it matches.
func Find(opts Options) ([]string, error) {
	roots := opts.Roots
	if len(roots) == 0 {
		roots = []string{"."}
	}
	include := opts.Include
	if len(include) == 0 {
		include = []string{"**/*.tex"}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.ToSlash(filepath.Clean(path))
		if !seen[path] && wanted(path, include, opts.Exclude) {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Changed returns the subset of discoverable documents git reports as
// modified: anything in `git status --porcelain` plus `git diff
// --name-only HEAD`. Files that no longer exist (deletions) are dropped.
func Changed(opts Options) ([]string, error) {
	include := opts.Include
	if len(include) == 0 {
		include = []string{"**/*.tex"}
	}

	status, err := gitOutput("status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}
	diff, err := gitOutput("diff", "--name-only", "HEAD")
	if err != nil {
		// A repo with no commits has no HEAD; status alone covers it.
		diff = ""
	}

	seen := make(map[string]bool)
	var files []string
	consider := func(path string) {
		path = filepath.ToSlash(strings.TrimSpace(path))
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		if !wanted(path, include, opts.Exclude) {
			return
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return
		}
		files = append(files, path)
	}

	for _, line := range strings.Split(status, "\n") {
		if len(line) < 4 {
			continue
		}
		// Porcelain format: XY <path>, or XY <old> -> <new> for renames.
		path := line[3:]
		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+4:]
		}
		consider(strings.Trim(path, `"`))
	}
	for _, line := range strings.Split(diff, "\n") {
		consider(line)
	}

	sort.Strings(files)
	return files, nil
}

func wanted(path string, include, exclude []string) bool {
	if len(include) > 0 && !MatchesAny(path, include) {
		return false
	}
	return !MatchesAny(path, exclude)
}

// MatchesAny returns true if the path matches any of the given glob
// patterns. A leading **/ in a pattern also matches at the top level and
// against the bare file name.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean != pattern {
			matched, err = filepath.Match(clean, filepath.Base(path))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(clean, path)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
