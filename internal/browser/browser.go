package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/qprjack86/AISupportRunbook/internal/fileutil"
)

// Sentinel errors for browser operations.
var (
	ErrBrowserLaunch  = errors.New("failed to launch browser")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// Environment variables honoured by NewRodLauncher.
const (
	EnvBrowserBin = "ROD_BROWSER_BIN"
	EnvNoSandbox  = "ROD_NO_SANDBOX"
	EnvCI         = "CI"
)

// DefaultTimeout bounds page load when the caller sets no deadline.
const DefaultTimeout = 30 * time.Second

// PrintOptions describes the printed page. Dimensions are in inches.
type PrintOptions struct {
	PaperWidth      float64
	PaperHeight     float64
	MarginTop       float64
	MarginBottom    float64
	MarginLeft      float64
	MarginRight     float64
	PrintBackground bool
}

// Engine is a running browser that can print HTML to PDF.
type Engine interface {
	PrintPDF(ctx context.Context, htmlContent string, opts PrintOptions) ([]byte, error)
	Close() error
}

// Launcher starts browser engines.
type Launcher interface {
	Launch(ctx context.Context) (Engine, error)
}

// Compile-time interface checks
var (
	_ Engine   = (*rodEngine)(nil)
	_ Launcher = (*RodLauncher)(nil)
)

// RodLauncher starts a fresh headless Chrome per Launch call.
// Rod downloads Chromium on first run if no binary is found.
type RodLauncher struct {
	Bin       string
	NoSandbox bool
	Timeout   time.Duration
}

// NewRodLauncher creates a RodLauncher configured from the environment.
// ROD_BROWSER_BIN selects a pre-installed browser; sandboxing is disabled
// when ROD_NO_SANDBOX or CI is true, or a custom binary is used (containers).
func NewRodLauncher(timeout time.Duration) *RodLauncher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	bin := os.Getenv(EnvBrowserBin)
	return &RodLauncher{
		Bin:       bin,
		NoSandbox: SandboxDisabled(),
		Timeout:   timeout,
	}
}

// SandboxDisabled reports whether NewRodLauncher will start Chrome with
// --no-sandbox under the current environment.
func SandboxDisabled() bool {
	return envBool(EnvNoSandbox) || envBool(EnvCI) || os.Getenv(EnvBrowserBin) != ""
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

// Launch starts Chrome and connects to it. On failure nothing is left running.
func (r *RodLauncher) Launch(ctx context.Context) (Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().Headless(true)
	if r.Bin != "" {
		l = l.Bin(r.Bin)
	}
	if r.NoSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		killLauncher(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		killLauncher(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	return &rodEngine{browser: b, launcher: l, timeout: r.Timeout}, nil
}

// rodEngine prints documents with a single dedicated browser process.
type rodEngine struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

// PrintPDF loads htmlContent from a temporary file and prints it.
func (e *rodEngine) PrintPDF(ctx context.Context, htmlContent string, opts PrintOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := e.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.Context(ctx).PDF(printParams(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// Close shuts the browser down and kills the whole process tree.
func (e *rodEngine) Close() error {
	var err error
	if e.browser != nil {
		err = e.browser.Close()
		e.browser = nil
	}
	if e.launcher != nil {
		killLauncher(e.launcher)
		e.launcher = nil
	}
	return err
}

// killLauncher is a no-op when the process never started.
func killLauncher(l *launcher.Launcher) {
	pid := l.PID()
	if pid <= 0 {
		return
	}
	killProcessGroup(pid)
	l.Kill()
}

// printParams converts PrintOptions into the DevTools print request.
func printParams(opts PrintOptions) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(opts.PaperWidth),
		PaperHeight:     floatPtr(opts.PaperHeight),
		MarginTop:       floatPtr(opts.MarginTop),
		MarginBottom:    floatPtr(opts.MarginBottom),
		MarginLeft:      floatPtr(opts.MarginLeft),
		MarginRight:     floatPtr(opts.MarginRight),
		PrintBackground: opts.PrintBackground,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// LookPath reports the browser binary Launch would use: bin when set,
// otherwise the one rod finds on the system.
func LookPath(bin string) (string, error) {
	if bin == "" {
		var found bool
		bin, found = launcher.LookPath()
		if !found {
			return "", fmt.Errorf("%w: Chrome/Chromium not found, install it or set %s", ErrBrowserLaunch, EnvBrowserBin)
		}
	}
	if _, err := os.Stat(bin); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}
	return bin, nil
}
