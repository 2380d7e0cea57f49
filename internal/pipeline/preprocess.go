package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// byteOrderMark is stripped because editors on Windows prepend it to UTF-8
// files and Goldmark would render it as text in the first block.
const byteOrderMark = "\uFEFF"

var crlfOrCR = regexp.MustCompile(`\r\n?`)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// RunbookPreprocessor normalizes uploaded runbook text before conversion.
type RunbookPreprocessor struct{}

// PreprocessMarkdown strips a leading BOM and normalizes line endings.
// Blank lines are left alone; inside fenced code they are content.
func (p *RunbookPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = strings.TrimPrefix(content, byteOrderMark)
	content = crlfOrCR.ReplaceAllString(content, "\n")
	return content
}
