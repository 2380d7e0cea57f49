package assets

import "errors"

// Lookup failures. Resolver falls back to the built-in assets only for the
// two not-found errors.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
)

// Configuration and I/O failures.
var (
	// ErrInvalidAssetName rejects names carrying separators or dots.
	ErrInvalidAssetName = errors.New("invalid asset name")
	// ErrInvalidBasePath rejects a RUNBOOK_ASSETS_PATH that is not a directory.
	ErrInvalidBasePath = errors.New("invalid assets directory")
	ErrAssetRead       = errors.New("reading asset")
	// ErrPathTraversal reports a file resolving outside the assets directory.
	ErrPathTraversal = errors.New("asset path escapes assets directory")
)
