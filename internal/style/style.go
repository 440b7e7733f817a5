// Package style decorates harness output with terminal colors.
//
// Styling is a pure string decoration: every method returns its input
// unchanged when the palette is disabled, so the same rendering code
// produces both colored terminal output and plain text for files, pipes
// and golden tests.
package style

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Palette applies colors to text when enabled.
// The zero value is a disabled palette.
type Palette struct {
	enabled bool
}

// New creates a palette with coloring explicitly on or off.
func New(enabled bool) Palette {
	return Palette{enabled: enabled}
}

// Plain returns a palette that never colors.
func Plain() Palette {
	return Palette{}
}

// Detect enables colors only when w is a terminal and NO_COLOR is unset.
func Detect(w io.Writer) Palette {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return Plain()
	}
	f, ok := w.(*os.File)
	if !ok {
		return Plain()
	}
	fd := f.Fd()
	return New(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// Enabled reports whether the palette emits escape sequences.
func (p Palette) Enabled() bool {
	return p.enabled
}

// Paint applies the given attributes to text.
func (p Palette) Paint(text string, attrs ...color.Attribute) string {
	if !p.enabled || text == "" {
		return text
	}
	c := color.New(attrs...)
	// Per-color override: the global color.NoColor reflects stdout, which is
	// not necessarily where this palette writes.
	c.EnableColor()
	return c.Sprint(text)
}

// Red returns red text.
func (p Palette) Red(text string) string { return p.Paint(text, color.FgRed) }

// Green returns green text.
func (p Palette) Green(text string) string { return p.Paint(text, color.FgGreen) }

// Yellow returns yellow text.
func (p Palette) Yellow(text string) string { return p.Paint(text, color.FgYellow) }

// Gray returns muted gray text.
func (p Palette) Gray(text string) string { return p.Paint(text, color.FgHiBlack) }

// Dim returns faint text.
func (p Palette) Dim(text string) string { return p.Paint(text, color.Faint) }

// Bold returns bold text.
func (p Palette) Bold(text string) string { return p.Paint(text, color.Bold) }

// Title is the dim italic style used for diff captions.
func (p Palette) Title(text string) string { return p.Paint(text, color.Faint, color.Italic) }

// Badge renders the inverted failure marker.
func (p Palette) Badge(text string) string { return p.Paint(text, color.Bold, color.BgRed) }

// Header renders a module header line.
func (p Palette) Header(text string) string {
	return p.Paint(text, color.Bold, color.Underline, color.FgWhite)
}

// Site renders the location of a failing unit.
func (p Palette) Site(text string) string { return p.Paint(text, color.Bold, color.FgRed) }

// Caption renders an underlined diff block caption in the given color.
func (p Palette) Caption(text string, fg color.Attribute) string {
	return p.Paint(text, fg, color.Underline, color.Faint, color.Italic)
}

// Status colors text green when ok, red otherwise.
func (p Palette) Status(text string, ok bool) string {
	if ok {
		return p.Green(text)
	}
	return p.Red(text)
}
