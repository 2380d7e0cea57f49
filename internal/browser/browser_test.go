package browser

// Notes:
// - Launch and PrintPDF need a real Chrome; they are covered by the
//   integration-tagged tests in browser_integration_test.go.
// - killProcessGroup is only exercised with an invalid PID: PID 0 would
//   target the current process group.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNewRodLauncher - Environment Configuration
// ---------------------------------------------------------------------------

func TestNewRodLauncher(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		wantBin       string
		wantNoSandbox bool
	}{
		{
			name:          "defaults",
			env:           map[string]string{EnvBrowserBin: "", EnvNoSandbox: "", EnvCI: ""},
			wantNoSandbox: false,
		},
		{
			name:          "custom binary disables sandbox",
			env:           map[string]string{EnvBrowserBin: "/usr/bin/chromium", EnvNoSandbox: "", EnvCI: ""},
			wantBin:       "/usr/bin/chromium",
			wantNoSandbox: true,
		},
		{
			name:          "CI disables sandbox",
			env:           map[string]string{EnvBrowserBin: "", EnvNoSandbox: "", EnvCI: "true"},
			wantNoSandbox: true,
		},
		{
			name:          "explicit no sandbox",
			env:           map[string]string{EnvBrowserBin: "", EnvNoSandbox: "1", EnvCI: ""},
			wantNoSandbox: true,
		},
		{
			name:          "no sandbox as true",
			env:           map[string]string{EnvBrowserBin: "", EnvNoSandbox: "true", EnvCI: ""},
			wantNoSandbox: true,
		},
		{
			name:          "unparsable flag ignored",
			env:           map[string]string{EnvBrowserBin: "", EnvNoSandbox: "yes please", EnvCI: ""},
			wantNoSandbox: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			l := NewRodLauncher(0)
			if l.Bin != tt.wantBin {
				t.Errorf("Bin = %q, want %q", l.Bin, tt.wantBin)
			}
			if l.NoSandbox != tt.wantNoSandbox {
				t.Errorf("NoSandbox = %v, want %v", l.NoSandbox, tt.wantNoSandbox)
			}
			if got := SandboxDisabled(); got != tt.wantNoSandbox {
				t.Errorf("SandboxDisabled() = %v, want %v", got, tt.wantNoSandbox)
			}
			if l.Timeout != DefaultTimeout {
				t.Errorf("Timeout = %v, want %v", l.Timeout, DefaultTimeout)
			}
		})
	}
}

func TestRodLauncher_Launch_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&RodLauncher{}).Launch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Launch() error = %v, want context.Canceled", err)
	}
}

func TestRodLauncher_Launch_MissingBinary(t *testing.T) {
	t.Parallel()

	l := &RodLauncher{Bin: filepath.Join(t.TempDir(), "no-chrome"), NoSandbox: true}
	eng, err := l.Launch(context.Background())
	if err == nil {
		_ = eng.Close()
		t.Fatal("Launch() should fail for missing binary")
	}
	if !errors.Is(err, ErrBrowserLaunch) {
		t.Errorf("Launch() error = %v, want ErrBrowserLaunch", err)
	}
}

// ---------------------------------------------------------------------------
// TestPrintParams - DevTools Print Request
// ---------------------------------------------------------------------------

func TestPrintParams(t *testing.T) {
	t.Parallel()

	opts := PrintOptions{
		PaperWidth:      8.27,
		PaperHeight:     11.69,
		MarginTop:       0.55,
		MarginBottom:    0.55,
		MarginLeft:      0.47,
		MarginRight:     0.47,
		PrintBackground: true,
	}

	p := printParams(opts)

	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"PaperWidth", p.PaperWidth, 8.27},
		{"PaperHeight", p.PaperHeight, 11.69},
		{"MarginTop", p.MarginTop, 0.55},
		{"MarginBottom", p.MarginBottom, 0.55},
		{"MarginLeft", p.MarginLeft, 0.47},
		{"MarginRight", p.MarginRight, 0.47},
	}
	for _, c := range checks {
		if c.got == nil || *c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !p.PrintBackground {
		t.Error("PrintBackground should be true")
	}
}

// ---------------------------------------------------------------------------
// TestLookPath
// ---------------------------------------------------------------------------

func TestLookPath_ExplicitBinary(t *testing.T) {
	t.Parallel()

	bin := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := LookPath(bin)
	if err != nil {
		t.Fatalf("LookPath() error = %v", err)
	}
	if got != bin {
		t.Errorf("LookPath() = %q, want %q", got, bin)
	}
}

func TestLookPath_MissingBinary(t *testing.T) {
	t.Parallel()

	_, err := LookPath(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrBrowserLaunch) {
		t.Errorf("LookPath() error = %v, want ErrBrowserLaunch", err)
	}
}

// ---------------------------------------------------------------------------
// TestRodEngine_Close
// ---------------------------------------------------------------------------

func TestRodEngine_Close_Idempotent(t *testing.T) {
	t.Parallel()

	e := &rodEngine{}
	if err := e.Close(); err != nil {
		t.Errorf("Close() on empty engine error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	killProcessGroup(999999999)
}
