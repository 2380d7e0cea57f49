package docx

import (
	"context"
	"errors"
)

// ErrDOCXGeneration indicates the Word package could not be produced.
var ErrDOCXGeneration = errors.New("DOCX generation failed")

// Converter turns a standalone HTML document into DOCX bytes.
type Converter interface {
	FromHTML(ctx context.Context, htmlContent string) ([]byte, error)
}

// Compile-time interface checks
var (
	_ Converter = (*AltChunkConverter)(nil)
	_ Converter = (*PandocConverter)(nil)
)

// Geometry is the Word page layout. All values are in inches.
type Geometry struct {
	Width        float64
	Height       float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
}

// twipsPerInch is the WordprocessingML unit (1/20 of a point).
const twipsPerInch = 1440

func twips(inches float64) int {
	return int(inches*twipsPerInch + 0.5)
}
