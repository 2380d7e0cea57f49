package portal

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static
var static embed.FS

// Config is published to the page as /config.json.
type Config struct {
	// GeneratorBase is the origin of /api/sas, /api/generate and
	// /api/enhance-prompt. Empty means the page's own origin.
	GeneratorBase string `json:"generatorBase"`
	// ConverterBase is the origin of /api/md2docx and /api/md2pdf.
	ConverterBase string `json:"converterBase"`
	// ContainerPrefix is stripped from generated paths before conversion.
	ContainerPrefix string `json:"containerPrefix"`
	// FunctionKeyRequired shows the key field; the page then sends the
	// entered key as x-functions-key on every API call.
	FunctionKeyRequired bool `json:"functionKeyRequired"`
}

// New returns a handler serving the page and its config.
func New(cfg Config) (http.Handler, error) {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		return nil, fmt.Errorf("portal assets: %w", err)
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("portal config: %w", err)
	}

	r := chi.NewRouter()
	r.Get("/config.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(payload)
	})
	r.Handle("/*", http.FileServerFS(sub))
	return r, nil
}
