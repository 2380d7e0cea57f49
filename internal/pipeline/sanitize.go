package pipeline

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// highlightColor restricts inline colours to the hex values chroma emits.
var highlightColor = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)

// Sanitizer strips dangerous markup from rendered runbooks. Runbooks may
// embed raw HTML, so the Goldmark output is not trusted as-is.
//
// Safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer based on the UGC policy, extended with
// the inline styles produced by syntax highlighting and table alignment.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowStyles("color", "background-color").Matching(highlightColor).OnElements("pre", "code", "span")
	p.AllowStyles("font-weight", "font-style", "text-decoration").OnElements("span")
	p.AllowStyles("text-align").OnElements("th", "td")
	return &Sanitizer{policy: p}
}

// Sanitize returns htmlContent with scripts, event handlers and unsafe URLs removed.
func (s *Sanitizer) Sanitize(htmlContent string) string {
	return s.policy.Sanitize(htmlContent)
}
