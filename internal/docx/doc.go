// Package docx converts rendered runbook HTML into Word documents.
//
// The default backend packages the HTML as an "alternative format chunk"
// (altChunk): a minimal WordprocessingML document whose body references an
// MHT part holding the HTML. Word imports the chunk on open, so styling from
// the runbook stylesheet carries over without a layout engine here.
//
// PandocConverter is an alternative backend that shells out to pandoc and
// produces native Word paragraphs instead of an embedded chunk.
package docx
