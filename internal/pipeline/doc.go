// Package pipeline turns runbook Markdown into a styled, standalone HTML
// document ready for DOCX or PDF conversion.
//
// Stages:
//   - Markdown preprocessing (BOM removal, line normalization)
//   - Markdown to HTML conversion via Goldmark (GFM, autolinks, raw HTML,
//     syntax highlighting)
//   - Sanitization of the produced HTML with bluemonday
//   - Wrapping in the runbook document template (charset, stylesheet, title)
//   - Optional CSS injection for output-specific rules
//
// Document encoding (DOCX) and page rendering (PDF) live outside this package.
package pipeline
