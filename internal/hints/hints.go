// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/qprjack86/AISupportRunbook/internal/browser"
	"github.com/qprjack86/AISupportRunbook/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowser returns hints for a missing or failing Chrome.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowser() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && !browser.SandboxDisabled() {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv(browser.EnvBrowserBin) == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForStorageConnection returns hints for a missing or rejected connection string.
func ForStorageConnection() string {
	return format("set STORAGE_CONNECTION (or AzureWebJobsStorage) to a connection string with AccountName and AccountKey, or RUNBOOK_STORAGE_DRIVER=memory for local use")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound(path string) string {
	if path == "" {
		return format("use --config /path/to/file.yaml or set RUNBOOK_CONFIG")
	}
	return format("check " + path + " exists or unset RUNBOOK_CONFIG")
}

// ForUnauthorized returns hints for rejected function keys.
func ForUnauthorized() string {
	return format("pass --function-key or set RUNBOOK_FUNCTION_KEY")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large runbooks, raise RUNBOOK_RENDER_TIMEOUT or use --timeout")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
