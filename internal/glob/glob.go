// Package glob compiles doublestar patterns and discovers suite files.
package glob

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIgnore lists directories never searched for suites.
var DefaultIgnore = []string{
	"**/.git",
	"**/node_modules",
	"**/vendor",
	"**/coverage",
	"**/testdata/**/fixture*",
}

var errEmptyPattern = errors.New("pattern is empty")

// Matcher matches slash-separated paths against a doublestar pattern.
type Matcher struct {
	pattern string
}

// Compile validates pattern.
func Compile(pattern string) (Matcher, error) {
	pattern = normalize(pattern)
	if pattern == "" {
		return Matcher{}, errEmptyPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return Matcher{}, fmt.Errorf("invalid pattern %q", pattern)
	}
	return Matcher{pattern: pattern}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(pattern string) Matcher {
	m, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// MatchString reports whether name matches. OS-specific separators are
// accepted.
func (m Matcher) MatchString(name string) bool {
	ok, _ := doublestar.Match(m.pattern, filepath.ToSlash(name))
	return ok
}

func (m Matcher) String() string {
	return m.pattern
}

// Options narrows what Find returns.
type Options struct {
	// Extensions keeps only files with one of these extensions ("yaml" or
	// ".yaml"). Empty keeps everything the patterns match.
	Extensions []string
	// Ignore adds patterns for paths to leave out, on top of DefaultIgnore.
	Ignore []string
}

// Find walks cwd and returns the files matching any of patterns, as sorted
// slash paths relative to cwd. Files whose name starts with "_" are helpers
// and never returned.
func Find(cwd string, patterns []string, opts Options) ([]string, error) {
	include, err := compileAll(patterns)
	if err != nil {
		return nil, err
	}
	exclude, err := compileAll(append(append([]string{}, DefaultIgnore...), opts.Ignore...))
	if err != nil {
		return nil, fmt.Errorf("ignore: %w", err)
	}
	extensions := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[ext] = true
	}

	var found []string
	root := os.DirFS(cwd)
	err = fs.WalkDir(root, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name == "." {
			return nil
		}
		if anyMatch(exclude, name) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if strings.HasPrefix(path.Base(name), "_") {
			return nil
		}
		if len(extensions) > 0 && !extensions[path.Ext(name)] {
			return nil
		}
		if anyMatch(include, name) {
			found = append(found, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", cwd, err)
	}

	sort.Strings(found)
	return found, nil
}

func compileAll(patterns []string) ([]Matcher, error) {
	out := make([]Matcher, 0, len(patterns))
	for _, p := range patterns {
		m, err := Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func anyMatch(ms []Matcher, name string) bool {
	for _, m := range ms {
		if m.MatchString(name) {
			return true
		}
	}
	return false
}

func normalize(pattern string) string {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	return strings.TrimPrefix(pattern, "./")
}
