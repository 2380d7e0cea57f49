package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultHTTPTimeout = 2 * time.Minute
	maxErrorBody       = 4 << 10

	// DefaultContainerPrefix is the container name the generator puts in
	// front of the paths it returns.
	DefaultContainerPrefix = "runbooks/"

	functionKeyHeader = "x-functions-key"
	requestIDHeader   = "X-Request-Id"
	blobTypeHeader    = "x-ms-blob-type"
)

// ErrMissingField is returned when a response lacks the expected field.
var ErrMissingField = errors.New("response missing field")

// Config captures the endpoints the client talks to.
type Config struct {
	GeneratorURL string // Hosts /api/sas, /api/generate, /api/enhance-prompt
	ConverterURL string // Hosts /api/md2docx, /api/md2pdf; defaults to GeneratorURL
	FunctionKey  string // Sent as x-functions-key when set
}

// Client issues requests against the generator and converter.
type Client struct {
	cfg        Config
	httpClient *http.Client
	newID      func() string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.GeneratorURL = strings.TrimRight(strings.TrimSpace(cfg.GeneratorURL), "/")
	cfg.ConverterURL = strings.TrimRight(strings.TrimSpace(cfg.ConverterURL), "/")
	if cfg.ConverterURL == "" {
		cfg.ConverterURL = cfg.GeneratorURL
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		newID:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// httpStatusError reports a non-2xx answer with the server's message.
type httpStatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.StatusCode, strings.TrimSpace(e.Body))
}

// StatusCode returns the HTTP status of err, or 0 if err is not an HTTP
// status error.
func StatusCode(err error) int {
	var se *httpStatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// UploadRequest names where an uploaded document lands.
type UploadRequest struct {
	CustomerID  string `json:"customerId"`
	ServiceArea string `json:"serviceArea"`
	FileName    string `json:"fileName"`
}

// IssueUploadURL asks the generator for a pre-signed upload URL.
func (c *Client) IssueUploadURL(ctx context.Context, req UploadRequest) (string, error) {
	var resp struct {
		UploadURL string `json:"uploadUrl"`
	}
	if err := c.postJSON(ctx, "upload url", c.cfg.GeneratorURL+"/api/sas", req, &resp); err != nil {
		return "", err
	}
	if resp.UploadURL == "" {
		return "", fmt.Errorf("upload url: %w: uploadUrl", ErrMissingField)
	}
	return resp.UploadURL, nil
}

// Upload PUTs data to a pre-signed blob URL.
func (c *Client) Upload(ctx context.Context, uploadURL string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("upload: build request: %w", err)
	}
	req.Header.Set(blobTypeHeader, "BlockBlob")
	req.Header.Set(requestIDHeader, c.newID())
	return c.do(req, "upload", nil)
}

// Generate asks the generator for a runbook and returns its Markdown path,
// which still carries the container prefix.
func (c *Client) Generate(ctx context.Context, customerID, serviceArea string) (string, error) {
	body := map[string]string{"customerId": customerID, "serviceArea": serviceArea}
	var resp struct {
		MarkdownPath string `json:"markdownPath"`
	}
	if err := c.postJSON(ctx, "generate", c.cfg.GeneratorURL+"/api/generate", body, &resp); err != nil {
		return "", err
	}
	if resp.MarkdownPath == "" {
		return "", fmt.Errorf("generate: %w: markdownPath", ErrMissingField)
	}
	return resp.MarkdownPath, nil
}

// Enhance returns the generator's rewrite of prompt verbatim.
func (c *Client) Enhance(ctx context.Context, prompt string) (string, error) {
	var resp struct {
		EnhancedPrompt string `json:"enhancedPrompt"`
	}
	if err := c.postJSON(ctx, "enhance", c.cfg.GeneratorURL+"/api/enhance-prompt", map[string]string{"prompt": prompt}, &resp); err != nil {
		return "", err
	}
	return resp.EnhancedPrompt, nil
}

// ConvertDOCX requests DOCX conversion and returns the output path.
func (c *Client) ConvertDOCX(ctx context.Context, markdownPath string) (string, error) {
	var resp struct {
		DocxPath string `json:"docxPath"`
	}
	if err := c.postJSON(ctx, "md2docx", c.cfg.ConverterURL+"/api/md2docx", map[string]string{"markdownPath": markdownPath}, &resp); err != nil {
		return "", err
	}
	if resp.DocxPath == "" {
		return "", fmt.Errorf("md2docx: %w: docxPath", ErrMissingField)
	}
	return resp.DocxPath, nil
}

// ConvertPDF requests PDF conversion and returns the output path.
func (c *Client) ConvertPDF(ctx context.Context, markdownPath string) (string, error) {
	var resp struct {
		PdfPath string `json:"pdfPath"`
	}
	if err := c.postJSON(ctx, "md2pdf", c.cfg.ConverterURL+"/api/md2pdf", map[string]string{"markdownPath": markdownPath}, &resp); err != nil {
		return "", err
	}
	if resp.PdfPath == "" {
		return "", fmt.Errorf("md2pdf: %w: pdfPath", ErrMissingField)
	}
	return resp.PdfPath, nil
}

func (c *Client) postJSON(ctx context.Context, op, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, c.newID())
	if c.cfg.FunctionKey != "" {
		req.Header.Set(functionKeyHeader, c.cfg.FunctionKey)
	}
	return c.do(req, op, out)
}

// do sends req and decodes a JSON body into out when out is non-nil.
func (c *Client) do(req *http.Request, op string, out any) error {
	log := zerolog.Ctx(req.Context())
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug().
		Str("op", op).
		Str("request_id", req.Header.Get(requestIDHeader)).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("gateway call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &httpStatusError{Op: op, StatusCode: resp.StatusCode, Body: string(msg)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
