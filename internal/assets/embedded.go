package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

// builtin holds the runbook stylesheets and document template.
//
//go:embed styles/*.css templates/*.html
var builtin embed.FS

// EmbeddedLoader serves the assets compiled into the binary.
type EmbeddedLoader struct {
	fsys fs.FS
}

// NewEmbeddedLoader creates an EmbeddedLoader over the built-in assets.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: builtin}
}

// LoadStyle returns styles/{name}.css.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.read("styles", name, ".css", ErrStyleNotFound)
}

// LoadTemplate returns templates/{name}.html.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.read("templates", name, ".html", ErrTemplateNotFound)
}

func (e *EmbeddedLoader) read(dir, name, ext string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(e.fsys, dir+"/"+name+ext)
	if err != nil {
		return "", fmt.Errorf("%w: %q (built-in)", notFound, name)
	}
	return string(data), nil
}

var _ Loader = (*EmbeddedLoader)(nil)
