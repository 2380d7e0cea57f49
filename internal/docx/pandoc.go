package docx

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/qprjack86/AISupportRunbook/internal/fileutil"
)

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// PandocConverter converts HTML to DOCX by invoking the pandoc CLI.
// Page geometry comes from pandoc's reference document, not from Geometry.
type PandocConverter struct {
	Runner CommandRunner
	Binary string
}

// NewPandocConverter creates a PandocConverter with a real command runner.
func NewPandocConverter() *PandocConverter {
	return &PandocConverter{Runner: &ExecRunner{}, Binary: "pandoc"}
}

// FromHTML writes htmlContent to a scratch directory, runs pandoc and reads
// back the generated document.
func (c *PandocConverter) FromHTML(ctx context.Context, htmlContent string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, cleanup, err := fileutil.TempDir()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	in := filepath.Join(dir, "runbook.html")
	out := filepath.Join(dir, "runbook.docx")

	// #nosec G306 -- scratch file inside a private temp dir
	if err := os.WriteFile(in, []byte(htmlContent), 0o600); err != nil {
		return nil, fmt.Errorf("writing pandoc input: %w", err)
	}

	_, stderr, err := c.Runner.Run(ctx, c.Binary, in, "-f", "html", "-t", "docx", "-o", out)
	if err != nil {
		return nil, fmt.Errorf("%w: pandoc: %s: %v", ErrDOCXGeneration, stderr, err)
	}

	// #nosec G304 -- path built from our own temp dir
	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("%w: reading pandoc output: %v", ErrDOCXGeneration, err)
	}
	return data, nil
}
