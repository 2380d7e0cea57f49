// Package browser launches headless Chrome through go-rod and prints HTML
// documents to PDF.
//
// Each Launch starts a dedicated browser process. Callers own the returned
// Engine and must Close it on every exit path; Close terminates the whole
// process tree so no Chrome helpers outlive the request.
package browser
