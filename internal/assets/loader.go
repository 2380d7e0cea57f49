package assets

import (
	"fmt"
	"strings"
)

// Built-in asset names.
const (
	// DefaultStyleName is the stylesheet shared by DOCX and PDF renditions.
	DefaultStyleName = "runbook"

	// PrintStyleName adds page-oriented rules used only for PDF output.
	PrintStyleName = "print"

	// DocumentTemplateName is the HTML document wrapping rendered Markdown.
	DocumentTemplateName = "runbook"
)

// Loader defines the contract for loading CSS styles and HTML templates.
type Loader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Rejects empty names and names containing path separators or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
