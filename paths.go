package runbook

import (
	"fmt"
	"strings"
)

// File extensions.
const (
	ExtMarkdown = ".md"
	ExtDOCX     = ".docx"
	ExtPDF      = ".pdf"
)

// Content types written with each artifact.
const (
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePDF  = "application/pdf"
)

// DeriveOutputPath replaces the single trailing ".md" of path with ext and
// leaves every other character unchanged. Paths without that suffix are
// rejected, since the output would otherwise overwrite the source.
func DeriveOutputPath(path, ext string) (string, error) {
	if err := ValidateMarkdownPath(path); err != nil {
		return "", err
	}
	return strings.TrimSuffix(path, ExtMarkdown) + ext, nil
}

// ValidateMarkdownPath checks that path names a Markdown blob.
func ValidateMarkdownPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: markdownPath required", ErrValidation)
	}
	if !strings.HasSuffix(path, ExtMarkdown) {
		return fmt.Errorf("%w: markdownPath must end in %s: %q", ErrValidation, ExtMarkdown, path)
	}
	return nil
}
