package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qprjack86/AISupportRunbook/internal/gateway"
)

// Output formats for convert.
const (
	formatDOCX = "docx"
	formatPDF  = "pdf"
	formatBoth = "both"
)

// targetFlags identifies the customer and service area.
type targetFlags struct {
	customer    string
	serviceArea string
}

func (t *targetFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.customer, "customer", "", "customer ID (required)")
	cmd.Flags().StringVar(&t.serviceArea, "service-area", "", "service area, e.g. AVD (required)")
	cmd.PreRunE = func(*cobra.Command, []string) error {
		if t.customer == "" || t.serviceArea == "" {
			return fmt.Errorf("%w: --customer and --service-area are required", errUsage)
		}
		return nil
	}
}

// usageArgs tags positional-argument errors as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}

// readSource reads the file to upload and returns its base name.
func readSource(path string) (string, []byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided upload path
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return filepath.Base(path), data, nil
}

// displayURL drops the query so signatures are never printed.
func displayURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	return u.String()
}

func newUploadCmd(opts *globalOptions) *cobra.Command {
	var target targetFlags
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a source document for a customer and service area",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := readSource(args[0])
			if err != nil {
				return err
			}
			c := opts.client()
			u, err := c.IssueUploadURL(cmd.Context(), gateway.UploadRequest{
				CustomerID:  target.customer,
				ServiceArea: target.serviceArea,
				FileName:    name,
			})
			if err != nil {
				return err
			}
			if err := c.Upload(cmd.Context(), u, data); err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), opts.noColor).success("Uploaded to " + displayURL(u))
			return nil
		},
	}
	target.bind(cmd)
	return cmd
}

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	var target targetFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a runbook from the uploaded documents",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := opts.client().Generate(cmd.Context(), target.customer, target.serviceArea)
			if err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), opts.noColor).field("markdownPath", path)
			return nil
		},
	}
	target.bind(cmd)
	return cmd
}

func newConvertCmd(opts *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "convert MARKDOWN_PATH",
		Short: "Convert a stored runbook to DOCX and/or PDF",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatDOCX && format != formatPDF && format != formatBoth {
				return fmt.Errorf("%w: --format must be docx, pdf or both", errUsage)
			}
			c := opts.client()
			p := newPrinter(cmd.OutOrStdout(), opts.noColor)
			path := gateway.StripContainerPrefix(args[0], opts.containerPrefix)

			if format != formatPDF {
				out, err := c.ConvertDOCX(cmd.Context(), path)
				if err != nil {
					return err
				}
				p.field("docxPath", out)
			}
			if format != formatDOCX {
				out, err := c.ConvertPDF(cmd.Context(), path)
				if err != nil {
					return err
				}
				p.field("pdfPath", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatBoth, "docx, pdf or both")
	return cmd
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	var target targetFlags
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Upload, generate and convert in one step",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := readSource(args[0])
			if err != nil {
				return err
			}
			res, err := opts.client().Run(cmd.Context(), gateway.RunRequest{
				CustomerID:      target.customer,
				ServiceArea:     target.serviceArea,
				FileName:        name,
				Data:            data,
				ContainerPrefix: opts.containerPrefix,
			})
			p := newPrinter(cmd.OutOrStdout(), opts.noColor)
			if res.UploadURL != "" {
				p.field("uploaded", displayURL(res.UploadURL))
			}
			if res.MarkdownPath != "" {
				p.field("markdownPath", res.MarkdownPath)
			}
			if res.DocxPath != "" {
				p.field("docxPath", res.DocxPath)
			}
			if err != nil {
				return err
			}
			p.field("pdfPath", res.PdfPath)
			return nil
		},
	}
	target.bind(cmd)
	return cmd
}

func newEnhanceCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "enhance PROMPT...",
		Short: "Rewrite a prompt with the generator's prompt enhancer",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.client().Enhance(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
