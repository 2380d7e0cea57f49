// Package server exposes runbook conversion over HTTP.
//
// Routes:
//
//	POST /api/md2docx   {"markdownPath": "<path>.md"} -> {"status":"ok","docxPath":...}
//	POST /api/md2pdf    {"markdownPath": "<path>.md"} -> {"status":"ok","pdfPath":...}
//	POST /api/sas       {"customerId","serviceArea","fileName"} -> {"uploadUrl":...}
//	GET  /healthz, /readyz
//	GET  /              upload portal
//
// Success bodies are JSON. Failures are plain text: 400 for invalid
// requests, 500 with the error message for everything else.
package server
