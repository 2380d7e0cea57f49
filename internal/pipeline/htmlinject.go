package pipeline

import (
	"context"
	"strings"
)

const headClose = "</head>"

// overlayStyles adds css as a final <style> element of doc's head so it
// wins over the base stylesheet. Documents without a head get the block
// prepended. Returns doc unchanged for empty css or a done context.
func overlayStyles(ctx context.Context, doc, css string) string {
	if css == "" || ctx.Err() != nil {
		return doc
	}

	block := "<style>" + sanitizeCSS(css) + "</style>"
	at := strings.LastIndex(strings.ToLower(doc), headClose)
	if at < 0 {
		return block + doc
	}

	var b strings.Builder
	b.Grow(len(doc) + len(block))
	b.WriteString(doc[:at])
	b.WriteString(block)
	b.WriteString(doc[at:])
	return b.String()
}

// sanitizeCSS escapes sequences that could end the enclosing <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
