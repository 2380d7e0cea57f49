// Package config loads runbook service settings from defaults, an optional
// YAML file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// MaxFileSize limits config file input to prevent memory exhaustion.
const MaxFileSize = 1 << 20

// Storage drivers.
const (
	DriverAzure  = "azure"
	DriverMemory = "memory"
)

// DOCX backends.
const (
	BackendAltChunk = "altchunk"
	BackendPandoc   = "pandoc"
)

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config holds all settings for the runbook daemon.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Render  RenderConfig  `yaml:"render"`
	Portal  PortalConfig  `yaml:"portal"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	RenderTimeout   time.Duration `yaml:"renderTimeout"`   // Per-conversion deadline
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"` // Drain window on SIGTERM
	CORSOrigins     []string      `yaml:"corsOrigins"`
	FunctionKey     string        `yaml:"functionKey"` // Optional x-functions-key required on /api routes
}

// StorageConfig defines where runbooks and uploads live.
type StorageConfig struct {
	Driver            string        `yaml:"driver"`
	ConnectionString  string        `yaml:"connectionString"`
	RunbooksContainer string        `yaml:"runbooksContainer"`
	DocsContainer     string        `yaml:"docsContainer"`
	UploadURLTTL      time.Duration `yaml:"uploadUrlTtl"`
	MemoryBaseURL     string        `yaml:"memoryBaseUrl"` // memory driver only
}

// RenderConfig defines document styling and converters.
type RenderConfig struct {
	Style       string `yaml:"style"`       // Embedded style name or CSS file path
	AssetsPath  string `yaml:"assetsPath"`  // Empty = embedded assets only
	DocxBackend string `yaml:"docxBackend"` // altchunk or pandoc
	PandocBin   string `yaml:"pandocBin"`
}

// PortalConfig defines the embedded upload page.
type PortalConfig struct {
	Enabled      bool   `yaml:"enabled"`
	GeneratorURL string `yaml:"generatorUrl"` // Base URL of the generate/enhance API; empty = same origin
}

// LogConfig defines logger output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration usable without any file or environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			RenderTimeout:   30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Storage: StorageConfig{
			Driver:            DriverAzure,
			RunbooksContainer: "runbooks",
			DocsContainer:     "docs",
			UploadURLTTL:      30 * time.Minute,
		},
		Render: RenderConfig{
			DocxBackend: BackendAltChunk,
			PandocBin:   "pandoc",
		},
		Portal: PortalConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatJSON,
		},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- config path is operator-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	if len(data) > MaxFileSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxFileSize)
	}
	if len(data) == 0 {
		return nil
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return nil
}

// Validate checks the configuration after all sources are merged.
func (c *Config) Validate() error {
	checks := []struct {
		section string
		err     error
	}{
		{"server", validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Addr, validation.Required),
			validation.Field(&c.Server.RenderTimeout, validation.Required, validation.Min(time.Second)),
			validation.Field(&c.Server.ShutdownTimeout, validation.Min(time.Duration(0))),
		)},
		{"storage", validation.ValidateStruct(&c.Storage,
			validation.Field(&c.Storage.Driver, validation.Required, validation.In(DriverAzure, DriverMemory)),
			validation.Field(&c.Storage.ConnectionString,
				validation.When(c.Storage.Driver == DriverAzure, validation.Required.Error("set STORAGE_CONNECTION or AzureWebJobsStorage"))),
			validation.Field(&c.Storage.RunbooksContainer, validation.Required),
			validation.Field(&c.Storage.DocsContainer, validation.Required),
			validation.Field(&c.Storage.UploadURLTTL, validation.Required, validation.Min(time.Minute)),
		)},
		{"render", validation.ValidateStruct(&c.Render,
			validation.Field(&c.Render.DocxBackend, validation.Required, validation.In(BackendAltChunk, BackendPandoc)),
			validation.Field(&c.Render.PandocBin, validation.When(c.Render.DocxBackend == BackendPandoc, validation.Required)),
		)},
		{"portal", validation.ValidateStruct(&c.Portal,
			validation.Field(&c.Portal.GeneratorURL, is.URL),
		)},
		{"log", validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Format, validation.In(FormatJSON, FormatConsole)),
		)},
	}

	for _, ch := range checks {
		if ch.err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, ch.section, ch.err)
		}
	}
	return nil
}
