package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"

	runbook "github.com/qprjack86/AISupportRunbook"
	"github.com/qprjack86/AISupportRunbook/internal/blobstore"
	"github.com/qprjack86/AISupportRunbook/internal/browser"
	"github.com/qprjack86/AISupportRunbook/internal/config"
	"github.com/qprjack86/AISupportRunbook/internal/docx"
	"github.com/qprjack86/AISupportRunbook/internal/hints"
	"github.com/qprjack86/AISupportRunbook/internal/logging"
	"github.com/qprjack86/AISupportRunbook/internal/portal"
	"github.com/qprjack86/AISupportRunbook/internal/server"
)

// Sentinel errors for daemon startup.
var (
	ErrStorageSetup = errors.New("storage setup failed")
	ErrListen       = errors.New("cannot listen")
)

// readHeaderTimeout bounds slow clients; it is not a render deadline.
const readHeaderTimeout = 10 * time.Second

// runMain runs the daemon until ctx is canceled and returns an exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	err := run(ctx, args, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "runbookd: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

func run(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if flags.version {
		fmt.Fprintf(env.Stdout, "runbookd %s\n", Version)
		return nil
	}

	if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: loading %s: %v", ErrUsage, flags.envFile, err)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      env.Stdout,
		ServiceName: "runbookd",
	})
	ctx = logger.WithContext(ctx)

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
		logger.Debug().Msgf(format, a...)
	}))
	for _, name := range config.UnknownEnvVars() {
		logger.Warn().Str("var", name).Msg("unknown environment variable")
	}

	handler, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}
	return serve(ctx, cfg, handler, env, logger)
}

// loadConfig merges defaults, the optional file, environment and flags.
func loadConfig(flags *daemonFlags) (*config.Config, error) {
	path := flags.config
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// storage is what the configured driver provides.
type storage struct {
	runbooks runbook.Store
	uploads  blobstore.URLSigner
	blobs    server.BlobWriter // memory driver only; backs server.BlobRoute
}

// stores returns the runbook store and the upload URL signer for the
// configured driver. The memory driver keeps both containers in one store
// and signs URLs pointing at the daemon's own blob route.
func stores(cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		base, err := memoryUploadBase(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageSetup, err)
		}
		mem := blobstore.NewMemoryStore(base)
		return &storage{
			runbooks: mem.Container(cfg.Storage.RunbooksContainer),
			uploads:  mem.Container(cfg.Storage.DocsContainer),
			blobs:    mem,
		}, nil
	default:
		client, err := blobstore.NewAzureClient(cfg.Storage.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageSetup, err)
		}
		return &storage{
			runbooks: blobstore.NewAzureStore(client, cfg.Storage.RunbooksContainer),
			uploads:  blobstore.NewAzureStore(client, cfg.Storage.DocsContainer),
		}, nil
	}
}

// memoryUploadBase defaults to the daemon's blob route and, when a function
// key is set, carries it as the code query parameter so a plain PUT to the
// issued URL is accepted.
func memoryUploadBase(cfg *config.Config) (string, error) {
	base := cfg.Storage.MemoryBaseURL
	if base == "" {
		base = server.BlobRoute
	}
	if cfg.Server.FunctionKey == "" {
		return base, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("memory base URL: %w", err)
	}
	q := u.Query()
	q.Set("code", cfg.Server.FunctionKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// buildHandler wires storage, the conversion service, the portal and the
// HTTP routes.
func buildHandler(cfg *config.Config, logger zerolog.Logger) (http.Handler, error) {
	st, err := stores(cfg)
	if err != nil {
		return nil, err
	}

	opts := []runbook.Option{
		runbook.WithTimeout(cfg.Server.RenderTimeout),
		runbook.WithStyle(cfg.Render.Style),
		runbook.WithAssetPath(cfg.Render.AssetsPath),
	}
	if cfg.Render.DocxBackend == config.BackendPandoc {
		pandoc := docx.NewPandocConverter()
		if cfg.Render.PandocBin != "" {
			pandoc.Binary = cfg.Render.PandocBin
		}
		opts = append(opts, runbook.WithDOCXConverter(pandoc))
	}
	svc, err := runbook.NewService(st.runbooks, opts...)
	if err != nil {
		return nil, err
	}

	var portalHandler http.Handler
	if cfg.Portal.Enabled {
		portalHandler, err = portal.New(portal.Config{
			GeneratorBase:       cfg.Portal.GeneratorURL,
			ContainerPrefix:     cfg.Storage.RunbooksContainer + "/",
			FunctionKeyRequired: cfg.Server.FunctionKey != "",
		})
		if err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("driver", cfg.Storage.Driver).
		Str("runbooks_container", cfg.Storage.RunbooksContainer).
		Str("docs_container", cfg.Storage.DocsContainer).
		Str("docx_backend", cfg.Render.DocxBackend).
		Dur("render_timeout", cfg.Server.RenderTimeout).
		Bool("function_key", cfg.Server.FunctionKey != "").
		Msg("service configured")

	browserBin := os.Getenv(browser.EnvBrowserBin)
	if _, err := browser.LookPath(browserBin); err != nil {
		logger.Warn().
			Err(err).
			Str("hint", strings.TrimSpace(hints.ForBrowser())).
			Msg("PDF conversion unavailable until Chrome is installed")
	}

	srv := server.New(svc, st.uploads, logger, server.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		FunctionKey: cfg.Server.FunctionKey,
		UploadTTL:   cfg.Storage.UploadURLTTL,
		BrowserBin:  browserBin,
		Portal:      portalHandler,
		Blobs:       st.blobs,
	})
	return srv.Handler(), nil
}

// serve runs the HTTP server until ctx is canceled, then drains in-flight
// requests for up to the shutdown timeout.
func serve(ctx context.Context, cfg *config.Config, handler http.Handler, env *Environment, logger zerolog.Logger) error {
	ln, err := env.Listen(cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrListen, cfg.Server.Addr, err)
	}

	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      cfg.Server.RenderTimeout + readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	logger.Info().Str("addr", ln.Addr().String()).Str("version", Version).Msg("listening")
	env.Ready(ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// hintFor appends an actionable hint for known startup failures.
func hintFor(err error) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(os.Getenv(config.EnvConfigPath))
	case errors.Is(err, ErrStorageSetup):
		return hints.ForStorageConnection()
	default:
		return ""
	}
}
