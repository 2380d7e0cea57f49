package runbook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/qprjack86/AISupportRunbook/internal/assets"
	"github.com/qprjack86/AISupportRunbook/internal/blobstore"
	"github.com/qprjack86/AISupportRunbook/internal/browser"
	"github.com/qprjack86/AISupportRunbook/internal/docx"
	"github.com/qprjack86/AISupportRunbook/internal/pipeline"
)

// Store reads and overwrites blobs in the runbooks container.
type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte, contentType string) error
}

// htmlRenderer turns Markdown into a standalone styled HTML document.
type htmlRenderer interface {
	Render(ctx context.Context, markdown, extraCSS string) (string, error)
}

// Compile-time interface checks
var (
	_ Store        = (blobstore.Store)(nil)
	_ htmlRenderer = (*pipeline.Renderer)(nil)
)

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout   time.Duration
	style     string
	assetPath string
}

// defaultTimeout bounds one conversion when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the per-conversion deadline.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("runbook: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithStyle selects the base stylesheet: an embedded style name or a CSS
// file path. Empty keeps the default runbook style.
func WithStyle(ref string) Option {
	return func(s *Service) {
		s.cfg.style = ref
	}
}

// WithAssetPath adds a directory of custom styles and templates searched
// before the embedded ones.
func WithAssetPath(dir string) Option {
	return func(s *Service) {
		s.cfg.assetPath = dir
	}
}

// WithDOCXConverter replaces the default altChunk DOCX converter.
func WithDOCXConverter(c docx.Converter) Option {
	return func(s *Service) {
		s.docx = c
	}
}

// WithBrowserLauncher replaces the headless Chrome launcher used for PDF output.
func WithBrowserLauncher(l browser.Launcher) Option {
	return func(s *Service) {
		s.launcher = l
	}
}

// Service converts runbooks held in a Store.
type Service struct {
	cfg      serviceConfig
	store    Store
	renderer htmlRenderer
	printCSS string
	docx     documentConverter
	pdf      documentConverter
	launcher browser.Launcher
	page     PageSettings
}

// NewService creates a Service backed by store.
// Returns error if the style or template cannot be loaded.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("runbook: nil store")
	}

	s := &Service{
		cfg:   serviceConfig{timeout: defaultTimeout},
		store: store,
		page:  RunbookPage(),
	}

	for _, opt := range opts {
		opt(s)
	}

	resolver, err := assets.NewResolver(s.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("initializing assets: %w", err)
	}

	css, err := resolver.ResolveStyle(s.cfg.style)
	if err != nil {
		return nil, fmt.Errorf("loading style: %w", err)
	}
	tmpl, err := resolver.LoadTemplate(assets.DocumentTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading document template: %w", err)
	}
	s.printCSS, err = resolver.LoadStyle(assets.PrintStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading print style: %w", err)
	}

	if s.renderer == nil {
		s.renderer, err = pipeline.NewRenderer(tmpl, css)
		if err != nil {
			return nil, fmt.Errorf("initializing renderer: %w", err)
		}
	}

	if s.docx == nil {
		s.docx = docx.NewAltChunkConverter(s.page.docxGeometry())
	}

	if s.launcher == nil {
		s.launcher = browser.NewRodLauncher(s.cfg.timeout)
	}
	if s.pdf == nil {
		s.pdf = NewPDFConverter(s.launcher, s.page)
	}

	return s, nil
}

// target describes one output format.
type target struct {
	name        string
	ext         string
	contentType string
	extraCSS    func(s *Service) string
	convert     func(s *Service) documentConverter
	wrap        error
}

var (
	docxTarget = target{
		name:        "docx",
		ext:         ExtDOCX,
		contentType: ContentTypeDOCX,
		extraCSS:    func(*Service) string { return "" },
		convert:     func(s *Service) documentConverter { return s.docx },
		wrap:        ErrConversion,
	}
	pdfTarget = target{
		name:        "pdf",
		ext:         ExtPDF,
		contentType: ContentTypePDF,
		extraCSS:    func(s *Service) string { return s.printCSS },
		convert:     func(s *Service) documentConverter { return s.pdf },
		wrap:        ErrRender,
	}
)

// ConvertDOCX renders the Markdown blob at markdownPath to DOCX and stores
// it at the derived ".docx" path, which is returned.
func (s *Service) ConvertDOCX(ctx context.Context, markdownPath string) (string, error) {
	return s.convert(ctx, markdownPath, docxTarget)
}

// ConvertPDF renders the Markdown blob at markdownPath to PDF and stores
// it at the derived ".pdf" path, which is returned.
func (s *Service) ConvertPDF(ctx context.Context, markdownPath string) (string, error) {
	return s.convert(ctx, markdownPath, pdfTarget)
}

// convert runs fetch, render, convert and store for one target.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (s *Service) convert(ctx context.Context, markdownPath string, t target) (outPath string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	outPath, err = DeriveOutputPath(markdownPath, t.ext)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()

	log := zerolog.Ctx(ctx).With().
		Str("format", t.name).
		Str("markdown_path", markdownPath).
		Logger()
	start := time.Now()

	raw, err := s.store.Get(ctx, markdownPath)
	if err != nil {
		return "", classifyStoreError(markdownPath, err)
	}

	html, err := s.renderer.Render(ctx, strings.ToValidUTF8(string(raw), "\uFFFD"), t.extraCSS(s))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	data, err := t.convert(s).FromHTML(ctx, html)
	if err != nil {
		if errors.Is(err, t.wrap) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", t.wrap, err)
	}

	if err := s.store.Put(ctx, outPath, data, t.contentType); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", ErrStorage, outPath, err)
	}

	log.Info().
		Str("output_path", outPath).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("runbook converted")
	return outPath, nil
}

// classifyStoreError maps store read failures onto the package sentinels.
func classifyStoreError(path string, err error) error {
	if errors.Is(err, blobstore.ErrBlobNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
