// Package suite models test suites and resolves them into an ordered
// sequence of runnable units.
//
// A suite is a tree: a Group holds named entries in declaration order, and
// each entry is either a Test or a nested Group. Names carry the run mode
// through a naming convention (see ExportMode and MemberMode), and a Group
// can force skip or only for everything below it.
package suite

import (
	"github.com/roach88/entail/internal/assert"
)

// Mode decides whether a unit runs.
type Mode string

const (
	ModeSkip Mode = "skip"
	ModeOnly Mode = "only"
	ModeTest Mode = "test"
)

// Test is a test body. It fails by returning an error or by panicking;
// failed checks on a panic with *assert.AssertionError.
type Test func(a *assert.Assert) error

// Member is a Test or a *Group.
type Member interface {
	member()
}

func (Test) member()   {}
func (*Group) member() {}

// Entry is a named member of a group.
type Entry struct {
	Name   string
	Member Member
}

// Group is an ordered collection of named tests and subgroups.
type Group struct {
	Skip    bool
	Only    bool
	Entries []Entry
}

// Module is a top-level suite. Its name is the first element of every
// unit's At path.
type Module struct {
	Name    string
	Exports Group
}

// Unit is a single resolved test with its final mode.
type Unit struct {
	At   []string
	Name string
	Test Test
	Mode Mode
}

// Origin returns the unit's location for failure reports.
func (u Unit) Origin() assert.Origin {
	return assert.Origin{At: u.At, Name: u.Name}
}

// New creates a group from entries.
func New(entries ...Entry) *Group {
	return &Group{Entries: entries}
}

// T names a test body.
func T(name string, fn Test) Entry {
	return Entry{Name: name, Member: fn}
}

// G names a nested group.
func G(name string, g *Group) Entry {
	return Entry{Name: name, Member: g}
}

// Add appends entries and returns the group.
func (g *Group) Add(entries ...Entry) *Group {
	g.Entries = append(g.Entries, entries...)
	return g
}

// Test appends a test body.
func (g *Group) Test(name string, fn Test) *Group {
	return g.Add(T(name, fn))
}

// Group appends a new subgroup and returns it.
func (g *Group) Group(name string) *Group {
	child := &Group{}
	g.Add(G(name, child))
	return child
}

// Len counts the tests below g.
func (g *Group) Len() int {
	n := 0
	for _, e := range g.Entries {
		switch m := e.Member.(type) {
		case Test:
			n++
		case *Group:
			n += m.Len()
		}
	}
	return n
}
