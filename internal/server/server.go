package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/qprjack86/AISupportRunbook/internal/blobstore"
	"github.com/qprjack86/AISupportRunbook/internal/browser"
)

// Converter runs runbook conversions and returns the stored output path.
type Converter interface {
	ConvertDOCX(ctx context.Context, markdownPath string) (string, error)
	ConvertPDF(ctx context.Context, markdownPath string) (string, error)
}

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
	FunctionKey string        // When set, /api routes require it
	UploadTTL   time.Duration // Lifetime of issued upload URLs
	BrowserBin  string        // Checked by /readyz; empty = rod's lookup
	Portal      http.Handler  // Served at /; nil disables the portal
	Blobs       BlobWriter    // Receives PUT BlobRoute/<container>/<path>; nil disables it
}

// BlobWriter stores an uploaded blob under its container-qualified path. It
// stands in for the blob service when storage is in memory.
type BlobWriter interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
}

// BlobRoute is where in-memory upload URLs point.
const BlobRoute = "/blobs"

// defaultUploadTTL matches the 30 minute window clients expect.
const defaultUploadTTL = 30 * time.Minute

// Server holds handler dependencies. It keeps no per-request state.
type Server struct {
	converter Converter
	uploads   blobstore.URLSigner
	logger    zerolog.Logger
	opts      Options
	lookPath  func(bin string) (string, error)
}

// New creates a Server. uploads may be nil, in which case /api/sas answers 500.
func New(converter Converter, uploads blobstore.URLSigner, logger zerolog.Logger, opts Options) *Server {
	if opts.UploadTTL <= 0 {
		opts.UploadTTL = defaultUploadTTL
	}
	return &Server{
		converter: converter,
		uploads:   uploads,
		logger:    logger,
		opts:      opts,
		lookPath:  browser.LookPath,
	}
}

// Handler builds the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(requireFunctionKey(s.opts.FunctionKey))
		r.Post("/md2docx", s.handleConvertDOCX)
		r.Post("/md2pdf", s.handleConvertPDF)
		r.Post("/sas", s.handleUploadURL)
	})

	if s.opts.Blobs != nil {
		r.With(requireFunctionKey(s.opts.FunctionKey)).Put(BlobRoute+"/*", s.handleBlobPut)
	}

	if s.opts.Portal != nil {
		r.Handle("/*", s.opts.Portal)
	}

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", functionKeyHeader, "x-ms-blob-type"},
	}).Handler(r)
}
