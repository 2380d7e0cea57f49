package main

// Notes:
// - Tests touching the environment use t.Setenv and so cannot run in
//   parallel.
// - TestRun_ServesAndShutsDown binds 127.0.0.1:0 through Environment.Listen
//   and cancels the context to exercise graceful shutdown.
// - TestRun_MemoryDriverUploadAndConvert goes through the real HTTP stack:
//   the memory driver's upload URLs point back at the daemon.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qprjack86/AISupportRunbook/internal/assets"
	"github.com/qprjack86/AISupportRunbook/internal/config"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func testEnv(stdout, stderr io.Writer) *Environment {
	return &Environment{
		Stdout: stdout,
		Stderr: stderr,
		Listen: func(string) (net.Listener, error) { return net.Listen("tcp", "127.0.0.1:0") },
		Ready:  func(string) {},
	}
}

// isolateEnv clears variables that would leak host configuration into tests.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, k := range []string{
		config.EnvConfigPath, config.EnvStorageConnection, config.EnvWebJobsStorage,
		config.EnvAddr, config.EnvFunctionKey, config.EnvRenderTimeout, config.EnvDocxBackend,
		config.EnvStyle, config.EnvAssetsPath, config.EnvLogLevel, config.EnvLogFormat,
		config.EnvGeneratorURL,
	} {
		t.Setenv(k, "")
	}
	t.Setenv(config.EnvStorageDriver, config.DriverMemory)
	return filepath.Join(t.TempDir(), "missing.env")
}

// ---------------------------------------------------------------------------
// Flags and exit codes
// ---------------------------------------------------------------------------

func TestParseFlags(t *testing.T) {
	t.Parallel()

	f, err := parseFlags([]string{"-c", "cfg.yaml", "--addr", ":9000", "--log-level", "debug"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if f.config != "cfg.yaml" || f.addr != ":9000" || f.logLevel != "debug" || f.envFile != ".env" {
		t.Errorf("flags = %+v", f)
	}

	for _, args := range [][]string{{"--nope"}, {"extra"}} {
		if _, err := parseFlags(args, io.Discard); !errors.Is(err, ErrUsage) {
			t.Errorf("parseFlags(%v) error = %v, want ErrUsage", args, err)
		}
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", fmt.Errorf("%w: bad flag", ErrUsage), ExitUsage},
		{"config parse", fmt.Errorf("%w: x", config.ErrConfigParse), ExitUsage},
		{"invalid config", fmt.Errorf("%w: x", config.ErrInvalidConfig), ExitUsage},
		{"missing style", fmt.Errorf("loading style: %w", assets.ErrStyleNotFound), ExitUsage},
		{"storage", fmt.Errorf("%w: x", ErrStorageSetup), ExitStorage},
		{"listen", fmt.Errorf("%w: :80", ErrListen), ExitListen},
		{"other", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Config precedence
// ---------------------------------------------------------------------------

func TestLoadConfig_Precedence(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "runbook.yaml")
	content := "server:\n  addr: \":7000\"\nlog:\n  level: warn\nstorage:\n  driver: memory\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvAddr, ":7100")

	cfg, err := loadConfig(&daemonFlags{config: path, logLevel: "debug"})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Addr != ":7100" {
		t.Errorf("Addr = %q, env should override file", cfg.Server.Addr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, flag should override file", cfg.Log.Level)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	isolateEnv(t)

	_, err := loadConfig(&daemonFlags{config: filepath.Join(t.TempDir(), "nope.yaml")})
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("error = %v, want ErrConfigNotFound", err)
	}
}

func TestRun_AzureWithoutConnection(t *testing.T) {
	envFile := isolateEnv(t)
	t.Setenv(config.EnvStorageDriver, config.DriverAzure)

	var stderr bytes.Buffer
	code := runMain(context.Background(), []string{"--env-file", envFile}, testEnv(io.Discard, &stderr))

	if code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "STORAGE_CONNECTION") {
		t.Errorf("stderr = %q, want connection string guidance", stderr.String())
	}
}

func TestRun_MalformedConnection(t *testing.T) {
	envFile := isolateEnv(t)
	t.Setenv(config.EnvStorageDriver, config.DriverAzure)
	t.Setenv(config.EnvStorageConnection, "not-a-connection-string")

	var stderr bytes.Buffer
	code := runMain(context.Background(), []string{"--env-file", envFile}, testEnv(io.Discard, &stderr))

	if code != ExitStorage {
		t.Errorf("exit code = %d, want %d (%s)", code, ExitStorage, stderr.String())
	}
	if !strings.Contains(stderr.String(), "hint:") {
		t.Errorf("stderr = %q, want hint", stderr.String())
	}
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	code := runMain(context.Background(), []string{"--version"}, testEnv(&stdout, io.Discard))

	if code != ExitSuccess {
		t.Errorf("exit code = %d", code)
	}
	if !strings.Contains(stdout.String(), "runbookd "+Version) {
		t.Errorf("stdout = %q", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// Serving
// ---------------------------------------------------------------------------

// startDaemon runs runMain in the background and returns the bound address
// and a stop function that cancels the daemon and checks it exits cleanly.
func startDaemon(t *testing.T, args ...string) (string, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan string, 1)
	env := testEnv(io.Discard, io.Discard)
	env.Ready = func(addr string) { addrCh <- addr }

	done := make(chan int, 1)
	go func() { done <- runMain(ctx, args, env) }()

	var addr string
	select {
	case addr = <-addrCh:
	case code := <-done:
		cancel()
		t.Fatalf("runMain exited early with %d", code)
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatal("server did not become ready")
	}

	stop := func() {
		t.Helper()
		cancel()
		select {
		case code := <-done:
			if code != ExitSuccess {
				t.Errorf("exit code = %d, want %d", code, ExitSuccess)
			}
		case <-time.After(20 * time.Second):
			t.Fatal("server did not shut down")
		}
	}
	return "http://" + addr, stop
}

func do(t *testing.T, method, target, contentType, body string, headers ...string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	if err != nil {
		t.Fatalf("building %s %s: %v", method, target, err)
	}
	req.Header.Set("Content-Type", contentType)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func TestRun_ServesAndShutsDown(t *testing.T) {
	envFile := isolateEnv(t)
	base, stop := startDaemon(t, "--env-file", envFile)
	defer stop()

	if code, _ := do(t, http.MethodGet, base+"/healthz", "", ""); code != http.StatusOK {
		t.Errorf("/healthz status = %d", code)
	}
	if code, _ := do(t, http.MethodPost, base+"/api/md2docx", "application/json", `{}`); code != http.StatusBadRequest {
		t.Errorf("/api/md2docx status = %d, want 400", code)
	}
}

func TestRun_MemoryDriverUploadAndConvert(t *testing.T) {
	envFile := isolateEnv(t)
	t.Setenv(config.EnvFunctionKey, "s3cret")
	base, stop := startDaemon(t, "--env-file", envFile)
	defer stop()

	const key = "x-functions-key"

	// /api/sas issues a URL on the daemon's own blob route.
	code, body := do(t, http.MethodPost, base+"/api/sas", "application/json",
		`{"customerId":"c","serviceArea":"AVD","fileName":"notes.md"}`, key, "s3cret")
	if code != http.StatusOK {
		t.Fatalf("/api/sas status = %d: %s", code, body)
	}
	var signed struct {
		UploadURL string `json:"uploadUrl"`
	}
	if err := json.Unmarshal([]byte(body), &signed); err != nil {
		t.Fatalf("decoding /api/sas: %v", err)
	}
	if want := "/blobs/docs/c/AVD/raw/notes.md?code=s3cret"; signed.UploadURL != want {
		t.Errorf("uploadUrl = %q, want %q", signed.UploadURL, want)
	}
	if code, body := do(t, http.MethodPut, base+signed.UploadURL, "text/markdown", "# Notes"); code != http.StatusCreated {
		t.Errorf("PUT upload URL status = %d: %s", code, body)
	}

	// A runbook put into the runbooks container converts through the same store.
	if code, body := do(t, http.MethodPut, base+"/blobs/runbooks/c/AVD/guide.md?code=s3cret",
		"text/markdown", "# AVD\n\nRestart the host."); code != http.StatusCreated {
		t.Fatalf("PUT runbook status = %d: %s", code, body)
	}
	code, body = do(t, http.MethodPost, base+"/api/md2docx", "application/json",
		`{"markdownPath":"c/AVD/guide.md"}`, key, "s3cret")
	if code != http.StatusOK {
		t.Fatalf("/api/md2docx status = %d: %s", code, body)
	}
	if want := `{"status":"ok","docxPath":"c/AVD/guide.docx"}`; strings.TrimSpace(body) != want {
		t.Errorf("/api/md2docx body = %s, want %s", body, want)
	}

	// Without the key the blob route is closed like the API.
	if code, _ := do(t, http.MethodPut, base+"/blobs/runbooks/c/AVD/other.md", "text/markdown", "# X"); code != http.StatusUnauthorized {
		t.Errorf("unkeyed PUT status = %d, want 401", code)
	}
}

func TestMemoryUploadBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{"default route", "", "", "/blobs"},
		{"default route with key", "", "k", "/blobs?code=k"},
		{"explicit base", "http://localhost:8080/blobs", "", "http://localhost:8080/blobs"},
		{"explicit base with key", "http://localhost:8080/blobs", "a&b", "http://localhost:8080/blobs?code=a%26b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			cfg.Storage.MemoryBaseURL = tt.base
			cfg.Server.FunctionKey = tt.key

			got, err := memoryUploadBase(cfg)
			if err != nil {
				t.Fatalf("memoryUploadBase() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("memoryUploadBase() = %q, want %q", got, tt.want)
			}
		})
	}
}
