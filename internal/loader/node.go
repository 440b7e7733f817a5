package loader

import "fmt"

type kind int

const (
	kindScalar kind = iota
	kindList
	kindMap
)

// node is a decoded document value with key order and source positions.
type node struct {
	kind    kind
	entries []entry // kindMap
	items   []node  // kindList
	raw     any     // kindScalar
	pos     Pos
}

type entry struct {
	name string
	val  node
}

// Pos is a location in a suite file.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	switch {
	case p.Line == 0:
		return p.File
	case p.Column == 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}

// LoadError is a suite file that could not be read or understood.
type LoadError struct {
	Pos     Pos
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (n node) errorf(format string, args ...any) error {
	return &LoadError{Pos: n.pos, Message: fmt.Sprintf(format, args...)}
}

// plain converts the node into the values yaml.v3 decodes into an any:
// map[string]any, []any and scalars.
func (n node) plain() any {
	switch n.kind {
	case kindMap:
		m := make(map[string]any, len(n.entries))
		for _, e := range n.entries {
			m[e.name] = e.val.plain()
		}
		return m
	case kindList:
		l := make([]any, len(n.items))
		for i, item := range n.items {
			l[i] = item.plain()
		}
		return l
	default:
		return n.raw
	}
}
