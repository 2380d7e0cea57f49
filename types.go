package runbook

import (
	"github.com/qprjack86/AISupportRunbook/internal/browser"
	"github.com/qprjack86/AISupportRunbook/internal/docx"
)

// A4 dimensions in inches.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

const mmPerInch = 25.4

// PageSettings is the printed page geometry in inches. The same geometry is
// used for PDF output and the DOCX section.
type PageSettings struct {
	Width        float64
	Height       float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
}

// RunbookPage returns the fixed runbook layout: A4 portrait, 14mm top and
// bottom margins, 12mm left and right.
func RunbookPage() PageSettings {
	return PageSettings{
		Width:        a4WidthInches,
		Height:       a4HeightInches,
		MarginTop:    millimetres(14),
		MarginBottom: millimetres(14),
		MarginLeft:   millimetres(12),
		MarginRight:  millimetres(12),
	}
}

func millimetres(v float64) float64 {
	return v / mmPerInch
}

func (p PageSettings) printOptions() browser.PrintOptions {
	return browser.PrintOptions{
		PaperWidth:      p.Width,
		PaperHeight:     p.Height,
		MarginTop:       p.MarginTop,
		MarginBottom:    p.MarginBottom,
		MarginLeft:      p.MarginLeft,
		MarginRight:     p.MarginRight,
		PrintBackground: true,
	}
}

func (p PageSettings) docxGeometry() docx.Geometry {
	return docx.Geometry{
		Width:        p.Width,
		Height:       p.Height,
		MarginTop:    p.MarginTop,
		MarginBottom: p.MarginBottom,
		MarginLeft:   p.MarginLeft,
		MarginRight:  p.MarginRight,
	}
}
