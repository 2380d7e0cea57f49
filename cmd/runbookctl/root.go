package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/qprjack86/AISupportRunbook/internal/gateway"
	"github.com/qprjack86/AISupportRunbook/internal/hints"
)

// Environment variables read as flag defaults.
const (
	envAPIURL       = "RUNBOOKCTL_API_URL"
	envConverterURL = "RUNBOOKCTL_CONVERTER_URL"
	envFunctionKey  = "RUNBOOK_FUNCTION_KEY"
)

// Exit codes for runbookctl.
const (
	ExitSuccess = 0
	ExitGeneral = 1
	ExitUsage   = 2
	ExitRemote  = 3 // The API answered with an error status
)

const defaultTimeout = 2 * time.Minute

// globalOptions holds persistent flags shared by every subcommand.
type globalOptions struct {
	apiURL          string
	converterURL    string
	functionKey     string
	containerPrefix string
	timeout         time.Duration
	noColor         bool
}

func (o *globalOptions) client() *gateway.Client {
	return gateway.NewClient(gateway.Config{
		GeneratorURL: o.apiURL,
		ConverterURL: o.converterURL,
		FunctionKey:  o.functionKey,
	}, gateway.WithHTTPClient(&http.Client{Timeout: o.timeout}))
}

// errUsage marks argument errors detected before any request is sent.
var errUsage = errors.New("usage")

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *globalOptions) {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "runbookctl",
		Short:         "Generate and convert support runbooks",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if opts.apiURL == "" && opts.converterURL == "" {
				return fmt.Errorf("%w: --api or %s is required", errUsage, envAPIURL)
			}
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.apiURL, "api", os.Getenv(envAPIURL), "generator base URL")
	pf.StringVar(&opts.converterURL, "converter", os.Getenv(envConverterURL), "converter base URL (default: --api)")
	pf.StringVar(&opts.functionKey, "function-key", os.Getenv(envFunctionKey), "API key sent as x-functions-key")
	pf.StringVar(&opts.containerPrefix, "container-prefix", gateway.DefaultContainerPrefix, "prefix stripped from generated paths")
	pf.DurationVar(&opts.timeout, "timeout", defaultTimeout, "per-request timeout")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newUploadCmd(opts),
		newGenerateCmd(opts),
		newConvertCmd(opts),
		newRunCmd(opts),
		newEnhanceCmd(opts),
	)
	return root, opts
}

// execute runs the CLI and maps errors to exit codes.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root, opts := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	newPrinter(stderr, opts.noColor).failure(fmt.Errorf("%w%s", err, hintFor(err)))
	return exitCodeFor(err)
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errUsage):
		return ExitUsage
	case gateway.StatusCode(err) != 0:
		return ExitRemote
	default:
		return ExitGeneral
	}
}

func hintFor(err error) string {
	switch {
	case gateway.StatusCode(err) == http.StatusUnauthorized:
		return hints.ForUnauthorized()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	default:
		return ""
	}
}
