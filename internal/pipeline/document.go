package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrTemplateRender indicates the document template could not be executed.
var ErrTemplateRender = errors.New("document template rendering failed")

// DefaultTitle is used when a runbook has no level-one heading.
const DefaultTitle = "Runbook"

// documentData feeds the runbook document template.
type documentData struct {
	Title string
	CSS   template.CSS
	Body  template.HTML
}

// DocumentBuilder wraps an HTML fragment in the fixed runbook document.
type DocumentBuilder struct {
	tmpl *template.Template
	css  string
}

// NewDocumentBuilder parses the document template. css is embedded in the
// document head and must already be trusted (it comes from assets or operator config).
func NewDocumentBuilder(tmplContent, css string) (*DocumentBuilder, error) {
	tmpl, err := template.New("document").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &DocumentBuilder{tmpl: tmpl, css: sanitizeCSS(css)}, nil
}

// Build renders the full document around a sanitized body fragment.
func (b *DocumentBuilder) Build(ctx context.Context, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// #nosec G203 -- css comes from assets, body was sanitized by Sanitizer
	data := documentData{
		Title: extractTitle(body),
		CSS:   template.CSS(b.css),
		Body:  template.HTML(body),
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}

// extractTitle returns the text of the first <h1>, or DefaultTitle.
func extractTitle(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	inH1 := false
	var title strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			return DefaultTitle
		case html.StartTagToken:
			if tok := z.Token(); tok.DataAtom == atom.H1 {
				inH1 = true
			}
		case html.TextToken:
			if inH1 {
				title.Write(z.Text())
			}
		case html.EndTagToken:
			if tok := z.Token(); tok.DataAtom == atom.H1 && inH1 {
				if t := strings.TrimSpace(title.String()); t != "" {
					return t
				}
				return DefaultTitle
			}
		}
	}
}
