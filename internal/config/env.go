package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvConfigPath        = "RUNBOOK_CONFIG"
	EnvStorageConnection = "STORAGE_CONNECTION"
	EnvWebJobsStorage    = "AzureWebJobsStorage"
	EnvRunbooksContainer = "RUNBOOKS_CONTAINER"
	EnvDocsContainer     = "DOCS_CONTAINER"
	EnvFunctionKey       = "RUNBOOK_FUNCTION_KEY"
	EnvAddr              = "RUNBOOK_ADDR"
	EnvLogLevel          = "RUNBOOK_LOG_LEVEL"
	EnvLogFormat         = "RUNBOOK_LOG_FORMAT"
	EnvRenderTimeout     = "RUNBOOK_RENDER_TIMEOUT"
	EnvCORSOrigins       = "RUNBOOK_CORS_ORIGINS"
	EnvDocxBackend       = "RUNBOOK_DOCX_BACKEND"
	EnvStyle             = "RUNBOOK_STYLE"
	EnvAssetsPath        = "RUNBOOK_ASSETS_PATH"
	EnvStorageDriver     = "RUNBOOK_STORAGE_DRIVER"
	EnvGeneratorURL      = "RUNBOOK_GENERATOR_URL"
)

// knownEnvVars lists valid RUNBOOK_* variables, used to flag typos.
var knownEnvVars = map[string]bool{
	EnvConfigPath:    true,
	EnvFunctionKey:   true,
	EnvAddr:          true,
	EnvLogLevel:      true,
	EnvLogFormat:     true,
	EnvRenderTimeout: true,
	EnvCORSOrigins:   true,
	EnvDocxBackend:   true,
	EnvStyle:         true,
	EnvAssetsPath:    true,
	EnvStorageDriver: true,
	EnvGeneratorURL:  true,
}

// ApplyEnv overrides c with values from the environment. Empty variables
// are ignored. The connection string comes from STORAGE_CONNECTION, else
// AzureWebJobsStorage.
func (c *Config) ApplyEnv() error {
	setString(&c.Storage.ConnectionString, EnvStorageConnection)
	if os.Getenv(EnvStorageConnection) == "" {
		setString(&c.Storage.ConnectionString, EnvWebJobsStorage)
	}
	setString(&c.Storage.RunbooksContainer, EnvRunbooksContainer)
	setString(&c.Storage.DocsContainer, EnvDocsContainer)
	setString(&c.Storage.Driver, EnvStorageDriver)

	setString(&c.Server.Addr, EnvAddr)
	setString(&c.Server.FunctionKey, EnvFunctionKey)
	if v := os.Getenv(EnvCORSOrigins); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv(EnvRenderTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvRenderTimeout, err)
		}
		c.Server.RenderTimeout = d
	}

	setString(&c.Render.DocxBackend, EnvDocxBackend)
	setString(&c.Render.Style, EnvStyle)
	setString(&c.Render.AssetsPath, EnvAssetsPath)

	setString(&c.Portal.GeneratorURL, EnvGeneratorURL)

	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Log.Format, EnvLogFormat)
	return nil
}

// UnknownEnvVars returns RUNBOOK_* variables that are set but not recognized.
func UnknownEnvVars() []string {
	var unknown []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "RUNBOOK_") && !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
