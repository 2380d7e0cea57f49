package docx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockRunner records its call and optionally writes the -o target.
type mockRunner struct {
	output     []byte
	stderr     string
	err        error
	calledWith []string
	input      string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) (string, string, error) {
	m.calledWith = append([]string{name}, args...)
	if len(args) > 0 {
		if b, err := os.ReadFile(args[0]); err == nil {
			m.input = string(b)
		}
	}
	if m.err != nil {
		return "", m.stderr, m.err
	}
	for i, a := range args {
		if a == "-o" && i+1 < len(args) {
			if err := os.WriteFile(args[i+1], m.output, 0o600); err != nil {
				return "", "", err
			}
		}
	}
	return "", m.stderr, nil
}

func TestPandocConverter_FromHTML(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{output: []byte("PK\x03\x04docx")}
	c := &PandocConverter{Runner: runner, Binary: "pandoc"}

	got, err := c.FromHTML(context.Background(), "<h1>Title</h1>")
	if err != nil {
		t.Fatalf("FromHTML() error = %v", err)
	}
	if string(got) != "PK\x03\x04docx" {
		t.Errorf("FromHTML() = %q, want runner output", got)
	}
	if runner.input != "<h1>Title</h1>" {
		t.Errorf("pandoc input = %q, want the HTML document", runner.input)
	}

	args := runner.calledWith
	if len(args) != 8 || args[0] != "pandoc" {
		t.Fatalf("unexpected command %v", args)
	}
	if strings.Join(args[2:6], " ") != "-f html -t docx" {
		t.Errorf("format flags = %v, want -f html -t docx", args[2:6])
	}
	if filepath.Ext(args[7]) != ".docx" {
		t.Errorf("output path = %q, want .docx", args[7])
	}
	if _, err := os.Stat(filepath.Dir(args[1])); !os.IsNotExist(err) {
		t.Errorf("scratch directory should be removed, stat err = %v", err)
	}
}

func TestPandocConverter_RunnerError(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{stderr: "pandoc: unknown reader", err: errors.New("exit status 21")}
	c := &PandocConverter{Runner: runner, Binary: "pandoc"}

	_, err := c.FromHTML(context.Background(), "<p>x</p>")
	if !errors.Is(err, ErrDOCXGeneration) {
		t.Fatalf("FromHTML() error = %v, want ErrDOCXGeneration", err)
	}
	if !strings.Contains(err.Error(), "unknown reader") {
		t.Errorf("error should include stderr, got %v", err)
	}
}

func TestPandocConverter_MissingOutput(t *testing.T) {
	t.Parallel()

	// Runner succeeds without writing the output file.
	c := &PandocConverter{
		Runner: runnerFunc(func(context.Context, string, ...string) (string, string, error) {
			return "", "", nil
		}),
		Binary: "pandoc",
	}

	if _, err := c.FromHTML(context.Background(), "<p>x</p>"); !errors.Is(err, ErrDOCXGeneration) {
		t.Errorf("FromHTML() error = %v, want ErrDOCXGeneration", err)
	}
}

func TestPandocConverter_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &mockRunner{}
	if _, err := (&PandocConverter{Runner: runner}).FromHTML(ctx, "<p>x</p>"); !errors.Is(err, context.Canceled) {
		t.Errorf("FromHTML() error = %v, want context.Canceled", err)
	}
	if runner.calledWith != nil {
		t.Error("runner should not be called after cancellation")
	}
}

func TestNewPandocConverter(t *testing.T) {
	t.Parallel()

	c := NewPandocConverter()
	if c.Binary != "pandoc" {
		t.Errorf("Binary = %q, want pandoc", c.Binary)
	}
	if _, ok := c.Runner.(*ExecRunner); !ok {
		t.Errorf("Runner = %T, want *ExecRunner", c.Runner)
	}
}

type runnerFunc func(ctx context.Context, name string, args ...string) (string, string, error)

func (f runnerFunc) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	return f(ctx, name, args...)
}
