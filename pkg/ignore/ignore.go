// Package ignore provides gitignore-compatible file matching for the
// symbolcore directory scan.
//
// It loads patterns from a project's .symbolcoreignore file (if present),
// merges them with built-in defaults for VCS directories and common
// non-source directories, and exposes a single ShouldIgnore method used by
// the CLI's indexer and the file watcher.
//
// Pattern syntax mirrors .gitignore:
//
//	# comment
//	vendor/          — match directories by name (trailing slash)
//	**/testdata/     — match at any depth
//	!important.php   — negate a previous pattern
//	/rootonly        — anchored to project root (leading slash)
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher tests whether a path should be ignored.
type Matcher struct {
	rules []rule
}

type rule struct {
	pattern  string
	negation bool
	dirOnly  bool
	anchored bool // pattern contains '/' (other than trailing) — anchored to root
}

// BuiltinDefaults are patterns applied even when no .symbolcoreignore file
// exists.
var BuiltinDefaults = []string{
	".git/",
	".svn/",
	".hg/",

	"vendor/",
	"node_modules/",

	"build/",
	"dist/",
	"out/",

	".idea/",
	".vscode/",
	".DS_Store",

	"**/testdata/",
	"**/fixtures/",
}

// New creates a Matcher from built-in defaults plus an optional
// .symbolcoreignore file located at <projectRoot>/.symbolcoreignore. If the
// file does not exist the Matcher still works using only built-in defaults.
func New(projectRoot string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range BuiltinDefaults {
		m.rules = append(m.rules, parsePattern(p))
	}

	ignoreFile := filepath.Join(projectRoot, ".symbolcoreignore")
	if err := m.loadFile(ignoreFile); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return m, nil
}

// NewFromDefaults creates a Matcher using only built-in defaults (no file).
func NewFromDefaults() *Matcher {
	m := &Matcher{}
	for _, p := range BuiltinDefaults {
		m.rules = append(m.rules, parsePattern(p))
	}
	return m
}

// NewEmpty creates a Matcher with no rules at all — nothing is ignored.
func NewEmpty() *Matcher {
	return &Matcher{}
}

// ShouldIgnore reports whether the given path (relative to the project
// root) should be ignored. isDir must be true when path refers to a
// directory.
func (m *Matcher) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	path = strings.TrimSuffix(path, "/")

	if path == "" || path == "." {
		return false
	}

	ignored := false
	matched := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if r.match(path) {
			ignored = !r.negation
			matched = true
		}
	}

	if ignored {
		return true
	}
	if matched {
		return false
	}

	// A file under an ignored directory is ignored even when the walk
	// hands us the file path directly rather than pruning the directory
	// first (e.g. a watcher event for "vendor/pkg/a.php").
	if !isDir {
		parts := strings.Split(path, "/")
		for i := 1; i <= len(parts)-1; i++ {
			parent := strings.Join(parts[:i], "/")
			if m.ShouldIgnore(parent, true) {
				return true
			}
		}
	}
	return false
}

// ShouldIgnoreDir is a convenience for ShouldIgnore(path, true).
func (m *Matcher) ShouldIgnoreDir(path string) bool { return m.ShouldIgnore(path, true) }

// ShouldIgnoreFile is a convenience for ShouldIgnore(path, false).
func (m *Matcher) ShouldIgnoreFile(path string) bool { return m.ShouldIgnore(path, false) }

// WalkFunc returns a filepath.WalkDir skip-check: convert an absolute path
// to one relative to projectRoot and test it against the matcher.
func (m *Matcher) WalkFunc(projectRoot string) func(path string, isDir bool) (skip bool, skipDir bool) {
	return func(path string, isDir bool) (bool, bool) {
		rel, err := filepath.Rel(projectRoot, path)
		if err != nil {
			rel = path
		}
		if m.ShouldIgnore(rel, isDir) {
			return true, isDir
		}
		return false, false
	}
}

func (m *Matcher) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.rules = append(m.rules, parsePattern(line))
	}
	return scanner.Err()
}

func parsePattern(pattern string) rule {
	r := rule{}

	if strings.HasPrefix(pattern, "!") {
		r.negation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		r.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		r.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	}
	if !r.anchored && strings.Contains(pattern, "/") {
		r.anchored = true
	}

	r.pattern = pattern
	return r
}

// match tests whether a rule matches the given path, using doublestar for
// real `**` glob semantics instead of a hand-rolled segment matcher.
func (r *rule) match(path string) bool {
	pattern := r.pattern

	if r.anchored {
		ok, _ := doublestar.Match(pattern, path)
		return ok
	}

	// Unanchored: matches the basename at any depth, or the full path.
	if ok, _ := doublestar.Match(pattern, basename(path)); ok {
		return true
	}
	if ok, _ := doublestar.Match("**/"+pattern, path); ok {
		return true
	}
	if ok, _ := doublestar.Match(pattern, path); ok {
		return true
	}
	return false
}

func basename(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
