package gateway

import (
	"context"
	"fmt"
	"strings"
)

// StripContainerPrefix removes prefix from the front of path once, if present.
func StripContainerPrefix(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// RunRequest is the input of the full client sequence.
type RunRequest struct {
	CustomerID  string
	ServiceArea string
	FileName    string
	Data        []byte
	// ContainerPrefix is stripped from the generated path; empty uses
	// DefaultContainerPrefix.
	ContainerPrefix string
}

// RunResult holds the three paths the sequence produces.
type RunResult struct {
	UploadURL    string `json:"-"`
	MarkdownPath string `json:"markdownPath"`
	DocxPath     string `json:"docxPath"`
	PdfPath      string `json:"pdfPath"`
}

// Run uploads a document, generates a runbook from it and converts the
// runbook to DOCX then PDF. It stops at the first failing step; the
// returned result holds whatever completed before it.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	var res RunResult
	prefix := req.ContainerPrefix
	if prefix == "" {
		prefix = DefaultContainerPrefix
	}

	uploadURL, err := c.IssueUploadURL(ctx, UploadRequest{
		CustomerID:  req.CustomerID,
		ServiceArea: req.ServiceArea,
		FileName:    req.FileName,
	})
	if err != nil {
		return res, err
	}
	res.UploadURL = uploadURL

	if err := c.Upload(ctx, uploadURL, req.Data); err != nil {
		return res, err
	}

	generated, err := c.Generate(ctx, req.CustomerID, req.ServiceArea)
	if err != nil {
		return res, err
	}
	res.MarkdownPath = generated

	markdownPath := StripContainerPrefix(generated, prefix)
	if res.DocxPath, err = c.ConvertDOCX(ctx, markdownPath); err != nil {
		return res, fmt.Errorf("converting %s: %w", markdownPath, err)
	}
	if res.PdfPath, err = c.ConvertPDF(ctx, markdownPath); err != nil {
		return res, fmt.Errorf("converting %s: %w", markdownPath, err)
	}
	return res, nil
}
