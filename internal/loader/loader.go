package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/entail/internal/suite"
)

// Format is a suite file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// Extensions lists the file extensions the loader understands.
var Extensions = []string{".yaml", ".yml", ".json", ".cue"}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML, true
	case ".cue":
		return FormatCUE, true
	}
	return "", false
}

// Parse builds a module from suite file content. The name is used both as
// the module name and in error positions.
func Parse(name string, data []byte, format Format) (suite.Module, error) {
	var (
		root node
		err  error
	)
	switch format {
	case FormatYAML:
		root, err = parseYAML(name, data)
	case FormatCUE:
		root, err = parseCUE(name, data)
	default:
		return suite.Module{}, &LoadError{Pos: Pos{File: name}, Message: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		return suite.Module{}, err
	}

	if root.kind != kindMap {
		return suite.Module{}, root.errorf("suite file must be a mapping of exports")
	}
	for _, e := range root.entries {
		if _, ok := e.val.raw.(bool); ok && e.val.kind == kindScalar && (e.name == "skip" || e.name == "only") {
			return suite.Module{}, e.val.errorf("%s flag is not allowed at the top level; put it on a group", e.name)
		}
	}
	exports, err := group(root)
	if err != nil {
		return suite.Module{}, err
	}
	return suite.Module{Name: name, Exports: exports}, nil
}

// LoadFile reads one suite file. The module is named after path relative to
// cwd, with forward slashes.
func LoadFile(cwd, path string) (suite.Module, error) {
	format, ok := FormatFor(path)
	if !ok {
		return suite.Module{}, &LoadError{Pos: Pos{File: path}, Message: "unsupported file extension"}
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(cwd, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return suite.Module{}, fmt.Errorf("failed to read suite file: %w", err)
	}
	return Parse(moduleName(cwd, full), data, format)
}

// Load reads every path in order and stops at the first error.
func Load(cwd string, paths []string) ([]suite.Module, error) {
	modules := make([]suite.Module, 0, len(paths))
	for _, p := range paths {
		m, err := LoadFile(cwd, p)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func moduleName(cwd, full string) string {
	if rel, err := filepath.Rel(cwd, full); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(full)
}

// group converts a mapping into a group. Boolean skip and only keys are
// flags; lists are tests; mappings are nested groups; other values are
// dropped.
func group(n node) (suite.Group, error) {
	var g suite.Group
	for _, e := range n.entries {
		if b, ok := e.val.raw.(bool); ok && e.val.kind == kindScalar {
			switch e.name {
			case "skip":
				g.Skip = b
				continue
			case "only":
				g.Only = b
				continue
			}
		}

		switch e.val.kind {
		case kindList:
			steps := make([]Step, 0, len(e.val.items))
			for _, item := range e.val.items {
				s, err := parseStep(item)
				if err != nil {
					return suite.Group{}, err
				}
				steps = append(steps, s)
			}
			g.Entries = append(g.Entries, suite.Entry{Name: e.name, Member: body(steps)})
		case kindMap:
			child, err := group(e.val)
			if err != nil {
				return suite.Group{}, err
			}
			g.Entries = append(g.Entries, suite.Entry{Name: e.name, Member: &child})
		}
	}
	return g, nil
}
