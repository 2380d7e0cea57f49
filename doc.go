// Package runbook converts Markdown runbooks held in blob storage into DOCX
// and PDF documents stored next to their source.
//
// # Conversion Pipeline
//
// Each conversion is one linear chain:
//
//  1. Fetch the Markdown blob (UTF-8)
//  2. Render it to HTML with Goldmark and wrap it in the runbook template
//  3. Convert the HTML to DOCX (altChunk package or pandoc) or to PDF
//     (a headless Chrome launched for this call only)
//  4. Write the artifact at the derived path, replacing any previous one
//
// The output path is never supplied by callers. It is derived from the
// source path by replacing the trailing ".md":
//
//	out, err := runbook.DeriveOutputPath("ppf-group/AVD/guide.md", runbook.ExtPDF)
//	// out == "ppf-group/AVD/guide.pdf"
//
// # Usage
//
//	svc, err := runbook.NewService(store, runbook.WithTimeout(time.Minute))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdfPath, err := svc.ConvertPDF(ctx, "ppf-group/AVD/guide.md")
//
// # Errors
//
// Failures wrap one of ErrValidation, ErrNotFound, ErrStorage, ErrRender or
// ErrConversion; use errors.Is to classify them. ErrNotFound also matches
// ErrStorage.
//
// # Concurrency
//
// A Service holds no per-request state and may be shared by concurrent
// callers. Conversions of the same path race; the last write wins.
package runbook
