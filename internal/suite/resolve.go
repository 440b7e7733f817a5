package suite

import (
	"iter"
	"regexp"
	"slices"
)

var (
	skipExport = regexp.MustCompile(`^(skipTest|skip_test|skip test|skip! test)`)
	onlyExport = regexp.MustCompile(`^(onlyTest|only_test|only test|only! test)`)
	testExport = regexp.MustCompile(`^test`)

	skipMember = regexp.MustCompile(`^skip[!_ ]`)
	onlyMember = regexp.MustCompile(`^only[!_ ]`)
)

// ExportMode reports the mode a top-level name selects. Names that do not
// follow the convention are not tests.
func ExportMode(name string) (Mode, bool) {
	switch {
	case skipExport.MatchString(name):
		return ModeSkip, true
	case onlyExport.MatchString(name):
		return ModeOnly, true
	case testExport.MatchString(name):
		return ModeTest, true
	default:
		return "", false
	}
}

// MemberMode reports the mode of a group member. groupDefault is the
// enclosing group's default mode, or "" when it has none.
func MemberMode(name string, groupDefault Mode) Mode {
	switch {
	case skipMember.MatchString(name):
		return ModeSkip
	case onlyMember.MatchString(name):
		if groupDefault == ModeSkip {
			return ModeSkip
		}
		return ModeOnly
	case groupDefault != "":
		return groupDefault
	default:
		return ModeTest
	}
}

// groupDefault derives the default for the members of g, given the mode
// the group itself was reached with.
func groupDefault(g *Group, outer Mode) Mode {
	switch {
	case outer == ModeSkip:
		return ModeSkip
	case g.Skip:
		return ModeSkip
	case g.Only:
		return ModeOnly
	case outer == ModeOnly:
		return ModeOnly
	default:
		return ""
	}
}

// Resolve yields the units of modules in declaration order with their final
// mode.
//
// Units are held back until the first only unit appears. At that point the
// held units are released as skipped, and from then on only units run and
// every other unit, in this or any later module, is skipped. When no only
// unit appears the held units are released unchanged at the end.
func Resolve(modules []Module) iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		var acc accumulator
		for _, m := range modules {
			for u := range units(m) {
				if !acc.step(u, yield) {
					return
				}
			}
		}
		acc.finish(yield)
	}
}

// Collect resolves modules into a slice.
func Collect(modules []Module) []Unit {
	return slices.Collect(Resolve(modules))
}

// accumulator is the state of the only/skip fold.
type accumulator struct {
	exclusive bool
	buffered  []Unit
}

func (acc *accumulator) step(u Unit, yield func(Unit) bool) bool {
	if acc.exclusive {
		if u.Mode != ModeOnly {
			u.Mode = ModeSkip
		}
		return yield(u)
	}
	if u.Mode != ModeOnly {
		acc.buffered = append(acc.buffered, u)
		return true
	}

	acc.exclusive = true
	held := acc.buffered
	acc.buffered = nil
	for _, b := range held {
		b.Mode = ModeSkip
		if !yield(b) {
			return false
		}
	}
	return yield(u)
}

func (acc *accumulator) finish(yield func(Unit) bool) {
	held := acc.buffered
	acc.buffered = nil
	for _, u := range held {
		if !yield(u) {
			return
		}
	}
}

// units walks one module, applying the naming convention.
func units(m Module) iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		at := []string{m.Name}
		for _, e := range m.Exports.Entries {
			mode, ok := ExportMode(e.Name)
			if !ok {
				continue
			}
			if !walk(e, mode, at, yield) {
				return
			}
		}
	}
}

func walk(e Entry, mode Mode, at []string, yield func(Unit) bool) bool {
	switch m := e.Member.(type) {
	case Test:
		if m == nil {
			return true
		}
		return yield(Unit{At: at, Name: e.Name, Test: m, Mode: mode})
	case *Group:
		if m == nil {
			return true
		}
		inner := slices.Concat(at, []string{e.Name})
		def := groupDefault(m, mode)
		for _, child := range m.Entries {
			if !walk(child, MemberMode(child.Name, def), inner, yield) {
				return false
			}
		}
	}
	return true
}
