package runbook

import (
	"errors"
	"fmt"
)

// Sentinel errors for conversion operations.
var (
	ErrValidation = errors.New("invalid request")
	ErrStorage    = errors.New("storage error")
	ErrNotFound   = fmt.Errorf("%w: blob not found", ErrStorage)
	ErrRender     = errors.New("render failed")
	ErrConversion = errors.New("document conversion failed")
)
