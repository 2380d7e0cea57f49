// Package portal serves the embedded upload page.
//
// The page walks the client sequence in the browser: request an upload URL,
// PUT the file, ask the generator for a runbook, then convert it to DOCX
// and PDF. It reads its API locations from /config.json.
package portal
