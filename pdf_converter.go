package runbook

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qprjack86/AISupportRunbook/internal/browser"
)

// documentConverter turns a rendered HTML document into file bytes.
type documentConverter interface {
	FromHTML(ctx context.Context, htmlContent string) ([]byte, error)
}

// Compile-time interface check
var _ documentConverter = (*PDFConverter)(nil)

// PDFConverter prints HTML with a browser engine acquired for each call.
// The engine is always released before FromHTML returns.
type PDFConverter struct {
	launcher browser.Launcher
	page     PageSettings
}

// NewPDFConverter creates a PDFConverter using launcher and page geometry.
func NewPDFConverter(launcher browser.Launcher, page PageSettings) *PDFConverter {
	return &PDFConverter{launcher: launcher, page: page}
}

// FromHTML launches an engine, prints htmlContent and tears the engine down.
func (c *PDFConverter) FromHTML(ctx context.Context, htmlContent string) ([]byte, error) {
	engine, err := c.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			zerolog.Ctx(ctx).Warn().Err(cerr).Msg("closing browser")
		}
	}()

	data, err := engine.PrintPDF(ctx, htmlContent, c.page.printOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return data, nil
}
