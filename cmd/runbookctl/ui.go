package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// printer writes labelled results and errors.
type printer struct {
	out   io.Writer
	label *color.Color
	ok    *color.Color
	fail  *color.Color
}

func newPrinter(out io.Writer, noColor bool) *printer {
	p := &printer{
		out:   out,
		label: color.New(color.FgCyan),
		ok:    color.New(color.FgGreen, color.Bold),
		fail:  color.New(color.FgRed, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.label, p.ok, p.fail} {
			c.DisableColor()
		}
	}
	return p
}

// field prints "label: value".
func (p *printer) field(label, value string) {
	fmt.Fprintf(p.out, "%s %s\n", p.label.Sprintf("%-13s", label+":"), value)
}

func (p *printer) success(msg string) {
	fmt.Fprintln(p.out, p.ok.Sprint("✓ ")+msg)
}

func (p *printer) failure(err error) {
	fmt.Fprintln(p.out, p.fail.Sprint("✗ ")+err.Error())
}
