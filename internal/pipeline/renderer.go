package pipeline

import (
	"context"
	"fmt"
)

// Renderer runs the full Markdown to HTML document pipeline.
type Renderer struct {
	preprocessor  MarkdownPreprocessor
	htmlConverter HTMLConverter
	document      *DocumentBuilder
}

// NewRenderer creates a Renderer that wraps output in tmplContent styled with css.
func NewRenderer(tmplContent, css string) (*Renderer, error) {
	doc, err := NewDocumentBuilder(tmplContent, css)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		preprocessor:  &RunbookPreprocessor{},
		htmlConverter: NewGoldmarkConverter(),
		document:      doc,
	}, nil
}

// Render converts markdown into a standalone HTML document. extraCSS is
// injected after the base stylesheet so it can override it; pass "" for none.
func (r *Renderer) Render(ctx context.Context, markdown, extraCSS string) (string, error) {
	content := r.preprocessor.PreprocessMarkdown(ctx, markdown)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fragment, err := r.htmlConverter.ToHTML(ctx, content)
	if err != nil {
		return "", fmt.Errorf("converting to HTML: %w", err)
	}

	doc, err := r.document.Build(ctx, fragment)
	if err != nil {
		return "", fmt.Errorf("building document: %w", err)
	}

	return overlayStyles(ctx, doc, extraCSS), nil
}
