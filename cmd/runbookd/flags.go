package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command-line input.
var ErrUsage = errors.New("usage error")

// daemonFlags holds command-line overrides. Flags win over environment
// and config file.
type daemonFlags struct {
	config   string
	addr     string
	logLevel string
	envFile  string
	version  bool
}

// parseFlags parses args (without the program name).
func parseFlags(args []string, stderr io.Writer) (*daemonFlags, error) {
	f := &daemonFlags{}
	fs := flag.NewFlagSet("runbookd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.config, "config", "c", "", "YAML config file (default $RUNBOOK_CONFIG)")
	fs.StringVar(&f.addr, "addr", "", "listen address (default $RUNBOOK_ADDR or :8080)")
	fs.StringVar(&f.logLevel, "log-level", "", "trace, debug, info, warn, error")
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded when present")
	fs.BoolVarP(&f.version, "version", "v", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}
	return f, nil
}
