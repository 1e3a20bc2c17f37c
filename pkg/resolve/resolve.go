// Package resolve expands user-supplied paths into the set of regular files to check.
package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoFiles is matched by errors.Is when resolution found nothing.
var ErrNoFiles = errors.New("no files found")

// NoFilesError is returned when none of the supplied paths yield a regular file.
type NoFilesError struct {
	Paths []string
}

func (e *NoFilesError) Error() string {
	return fmt.Sprintf("No files found in supplied paths %s.", strings.Join(e.Paths, ", "))
}

// Is reports whether target is ErrNoFiles.
func (e *NoFilesError) Is(target error) bool {
	return target == ErrNoFiles
}

// Options controls directory traversal. The zero value skips hidden entries
// and symlinks found while walking directories.
type Options struct {
	// IncludeHidden descends into and returns entries whose name starts with a dot.
	IncludeHidden bool
	// FollowSymlinks returns symlinked files and descends symlinked directories.
	FollowSymlinks bool
	// Exclude holds doublestar globs. Each is matched against the path relative
	// to the directory input it was found under, and against the full
	// normalized path. A pattern without a slash also matches the base name.
	Exclude []string
}

// Resolve returns the deduplicated regular files named by or contained in
// paths, in discovery order. Directories are walked recursively in lexical
// order; paths that are neither a directory nor a regular file are dropped.
func Resolve(paths []string, opts Options) ([]string, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	var found []candidate
	for _, p := range unique(paths) {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}

		switch {
		case info.IsDir():
			w := &walker{opts: opts, visited: map[string]struct{}{}}
			w.walk(p)
			for _, f := range w.files {
				found = append(found, candidate{path: f, rel: strings.TrimPrefix(f, p+"/")})
			}
		case info.Mode().IsRegular():
			found = append(found, candidate{path: p, rel: p})
		}
	}

	seen := make(map[string]struct{}, len(found))
	var files []string
	for _, c := range found {
		f := Normalize(c.path)
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		if excluded(f, Normalize(c.rel), opts.Exclude) {
			continue
		}
		files = append(files, f)
	}

	if len(files) == 0 {
		return nil, &NoFilesError{Paths: append([]string(nil), paths...)}
	}
	return files, nil
}

// candidate is a discovered file and its path below the input that named it.
type candidate struct {
	path string
	rel  string
}

type walker struct {
	opts    Options
	visited map[string]struct{}
	files   []string
}

func (w *walker) walk(dir string) {
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		if _, seen := w.visited[real]; seen {
			return
		}
		w.visited[real] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if !w.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := dir + "/" + name

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			if !w.opts.FollowSymlinks {
				continue
			}
			target, err := os.Stat(path)
			if err != nil {
				continue
			}
			if target.IsDir() {
				w.walk(path)
			} else if target.Mode().IsRegular() {
				w.files = append(w.files, path)
			}
		case entry.IsDir():
			w.walk(path)
		case entry.Type().IsRegular():
			w.files = append(w.files, path)
		}
	}
}

// Normalize collapses every run of path separators into a single separator.
func Normalize(path string) string {
	var b strings.Builder
	b.Grow(len(path))

	prevSep := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		sep := c == '/' || c == filepath.Separator
		if sep && prevSep {
			continue
		}
		prevSep = sep
		b.WriteByte(c)
	}
	return b.String()
}

func unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func excluded(path, rel string, patterns []string) bool {
	targets := []string{trimLead(rel), trimLead(path)}
	base := filepath.Base(path)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		for _, target := range targets {
			if ok, _ := doublestar.Match(pattern, target); ok {
				return true
			}
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, base); ok {
				return true
			}
		}
	}
	return false
}

func trimLead(path string) string {
	return strings.TrimPrefix(strings.TrimPrefix(filepath.ToSlash(path), "./"), "/")
}
