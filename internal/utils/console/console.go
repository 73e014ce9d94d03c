// Package console provides helpers for writing consistent terminal output.
//
// Every menu action prints something back to the user. Rather than
// repeating colour handling in every handler, we centralise it here:
//
//	Success → green     Error → red     Warn → yellow     Info → cyan
//
// Consistent message shapes also make the tool predictable: an error is
// always one red line describing what went wrong (see Describe).
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// RuleWidth is the width of the separator lines around menus and headings.
const RuleWidth = 50

// Printer writes coloured lines to an io.Writer.
type Printer struct {
	w       io.Writer
	success *color.Color
	failure *color.Color
	warning *color.Color
	info    *color.Color
	bold    *color.Color
}

// NewPrinter returns a Printer writing to w. With useColor false every
// line is written without escape sequences, whatever the terminal.
func NewPrinter(w io.Writer, useColor bool) *Printer {
	p := &Printer{
		w:       w,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		warning: color.New(color.FgYellow),
		info:    color.New(color.FgCyan),
		bold:    color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.success, p.failure, p.warning, p.info, p.bold} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Println writes an uncoloured line.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Printf writes uncoloured formatted text with no trailing newline added.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Success writes a green line.
func (p *Printer) Success(format string, a ...any) {
	p.success.Fprintln(p.w, fmt.Sprintf(format, a...))
}

// Error writes a red line.
func (p *Printer) Error(format string, a ...any) {
	p.failure.Fprintln(p.w, fmt.Sprintf(format, a...))
}

// Warn writes a yellow line.
func (p *Printer) Warn(format string, a ...any) {
	p.warning.Fprintln(p.w, fmt.Sprintf(format, a...))
}

// Info writes a cyan line.
func (p *Printer) Info(format string, a ...any) {
	p.info.Fprintln(p.w, fmt.Sprintf(format, a...))
}

// Heading writes title between two rules made of ch, preceded by a blank
// line.
func (p *Printer) Heading(title string, ch string, width int) {
	rule := strings.Repeat(ch, width)
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, rule)
	p.bold.Fprintln(p.w, title)
	fmt.Fprintln(p.w, rule)
}

// Rule writes a line of width ch characters.
func (p *Printer) Rule(ch string, width int) {
	fmt.Fprintln(p.w, strings.Repeat(ch, width))
}
