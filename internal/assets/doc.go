// Package assets provides the stylesheets and the HTML document template used
// to wrap rendered runbooks before DOCX or PDF conversion.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in runbook styles)
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── Resolver          - combines both with custom-first fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css        # e.g. runbook.css, print.css
//	└── templates/
//	    └── {name}.html       # e.g. runbook.html
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
