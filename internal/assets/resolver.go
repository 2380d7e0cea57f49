package assets

import (
	"errors"
	"fmt"
	"os"

	"github.com/qprjack86/AISupportRunbook/internal/fileutil"
)

// Resolver tries a custom directory first and falls back to embedded assets
// when the asset is not found there.
type Resolver struct {
	custom   Loader // nil if no custom path configured
	embedded Loader
}

// NewResolver creates a Resolver. An empty customBasePath means embedded only.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}

	return r, nil
}

// LoadStyle loads a CSS style, trying the custom loader first.
func (r *Resolver) LoadStyle(name string) (string, error) {
	return r.loadWithFallback(func(l Loader) (string, error) {
		return l.LoadStyle(name)
	})
}

// LoadTemplate loads an HTML template, trying the custom loader first.
func (r *Resolver) LoadTemplate(name string) (string, error) {
	return r.loadWithFallback(func(l Loader) (string, error) {
		return l.LoadTemplate(name)
	})
}

// ResolveStyle turns a style reference into CSS content.
// A reference containing a path separator is read as a file; anything else is
// an asset name. An empty reference selects DefaultStyleName.
func (r *Resolver) ResolveStyle(ref string) (string, error) {
	if ref == "" {
		ref = DefaultStyleName
	}

	if fileutil.IsFilePath(ref) {
		content, err := os.ReadFile(ref) // #nosec G304 -- operator-provided path
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
		}
		return string(content), nil
	}

	return r.LoadStyle(ref)
}

func (r *Resolver) loadWithFallback(loadFn func(Loader) (string, error)) (string, error) {
	if r.custom == nil {
		return loadFn(r.embedded)
	}

	content, err := loadFn(r.custom)
	if err == nil {
		return content, nil
	}

	// Only "not found" falls through; validation and I/O errors surface.
	if !isNotFoundError(err) {
		return "", err
	}

	return loadFn(r.embedded)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

var _ Loader = (*Resolver)(nil)
