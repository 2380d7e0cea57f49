// Command runbookctl drives the runbook APIs from the command line:
// upload source documents, generate runbooks, convert them and enhance
// prompts.
package main

import (
	"context"
	"os"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	ctx, stop := notifyContext(context.Background())
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
