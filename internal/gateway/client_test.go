package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Notes:
// - fakeAPI plays generator, converter and blob endpoint on one httptest
//   server so Run can be exercised end to end.
// - Handlers record what they received; assertions read them after the call.

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

type fakeAPI struct {
	mu        sync.Mutex
	srv       *httptest.Server
	calls     []string
	bodies    map[string]map[string]string
	keys      map[string]string
	uploaded  []byte
	blobType  string
	failRoute string
	generated string
}

func newFakeAPI(t *testing.T, opts ...func(*fakeAPI)) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		bodies:    map[string]map[string]string{},
		keys:      map[string]string{},
		generated: "runbooks/ppf-group/AVD/runbook.md",
	}
	for _, opt := range opts {
		opt(f)
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.keys[r.URL.Path] = r.Header.Get(functionKeyHeader)

	if r.URL.Path == f.failRoute {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	if r.Method == http.MethodPut {
		f.blobType = r.Header.Get(blobTypeHeader)
		f.uploaded, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		return
	}

	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.bodies[r.URL.Path] = body

	var resp any
	switch r.URL.Path {
	case "/api/sas":
		resp = map[string]string{"uploadUrl": f.srv.URL + "/blob/docs/" + body["fileName"] + "?sig=x"}
	case "/api/generate":
		resp = map[string]string{"markdownPath": f.generated}
	case "/api/enhance-prompt":
		resp = map[string]string{"enhancedPrompt": "better: " + body["prompt"]}
	case "/api/md2docx":
		resp = map[string]string{"status": "ok", "docxPath": "x.docx"}
	case "/api/md2pdf":
		resp = map[string]string{"status": "ok", "pdfPath": "x.pdf"}
	default:
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeAPI) callList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) body(path string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path]
}

func (f *fakeAPI) key(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[path]
}

func (f *fakeAPI) upload() (blobType string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blobType, f.uploaded
}

// ---------------------------------------------------------------------------
// Individual calls
// ---------------------------------------------------------------------------

func TestIssueUploadURL(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	c := NewClient(Config{GeneratorURL: api.srv.URL + "/", FunctionKey: "k"})

	u, err := c.IssueUploadURL(context.Background(), UploadRequest{CustomerID: "c", ServiceArea: "s", FileName: "f.pdf"})

	require.NoError(t, err)
	assert.Equal(t, api.srv.URL+"/blob/docs/f.pdf?sig=x", u)
	assert.Equal(t, map[string]string{"customerId": "c", "serviceArea": "s", "fileName": "f.pdf"}, api.body("/api/sas"))
	assert.Equal(t, "k", api.key("/api/sas"))
}

func TestUpload(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	c := NewClient(Config{GeneratorURL: api.srv.URL, FunctionKey: "k"})

	err := c.Upload(context.Background(), api.srv.URL+"/blob/docs/f.pdf?sig=x", []byte("bytes"))

	require.NoError(t, err)
	blobType, data := api.upload()
	assert.Equal(t, "BlockBlob", blobType)
	assert.Equal(t, []byte("bytes"), data)
	assert.Empty(t, api.key("/blob/docs/f.pdf"), "function key must not leak to blob storage")
}

func TestEnhance(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	c := NewClient(Config{GeneratorURL: api.srv.URL})

	got, err := c.Enhance(context.Background(), "restart AVD hosts")

	require.NoError(t, err)
	assert.Equal(t, "better: restart AVD hosts", got)
}

func TestConvert_UsesConverterURL(t *testing.T) {
	t.Parallel()

	gen := newFakeAPI(t)
	conv := newFakeAPI(t)
	c := NewClient(Config{GeneratorURL: gen.srv.URL, ConverterURL: conv.srv.URL})

	docx, err := c.ConvertDOCX(context.Background(), "a.md")
	require.NoError(t, err)
	pdf, err := c.ConvertPDF(context.Background(), "a.md")
	require.NoError(t, err)

	assert.Equal(t, "x.docx", docx)
	assert.Equal(t, "x.pdf", pdf)
	assert.Empty(t, gen.callList())
	assert.Equal(t, []string{"POST /api/md2docx", "POST /api/md2pdf"}, conv.callList())
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "markdownPath required", http.StatusBadRequest)
	}))
	defer srv.Close()
	c := NewClient(Config{GeneratorURL: srv.URL})

	_, err := c.ConvertDOCX(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Contains(t, err.Error(), "markdownPath required")
}

func TestMissingField(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	c := NewClient(Config{GeneratorURL: srv.URL})

	_, err := c.Generate(context.Background(), "c", "s")

	assert.ErrorIs(t, err, ErrMissingField)
	assert.Zero(t, StatusCode(err))
}

func TestStripContainerPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, prefix, want string
	}{
		{"runbooks/c/s/r.md", "runbooks/", "c/s/r.md"},
		{"c/s/r.md", "runbooks/", "c/s/r.md"},
		{"runbooks/runbooks/r.md", "runbooks/", "runbooks/r.md"},
		{"docs/runbooks/r.md", "runbooks/", "docs/runbooks/r.md"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripContainerPrefix(tt.in, tt.prefix), tt.in)
	}
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRun(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	c := NewClient(Config{GeneratorURL: api.srv.URL})

	res, err := c.Run(context.Background(), RunRequest{
		CustomerID:  "ppf-group",
		ServiceArea: "AVD",
		FileName:    "notes.pdf",
		Data:        []byte("%PDF"),
	})

	require.NoError(t, err)
	assert.Equal(t, "runbooks/ppf-group/AVD/runbook.md", res.MarkdownPath)
	assert.Equal(t, "x.docx", res.DocxPath)
	assert.Equal(t, "x.pdf", res.PdfPath)
	assert.Equal(t, []string{
		"POST /api/sas",
		"PUT /blob/docs/notes.pdf",
		"POST /api/generate",
		"POST /api/md2docx",
		"POST /api/md2pdf",
	}, api.callList())
	assert.Equal(t, "ppf-group/AVD/runbook.md", api.body("/api/md2docx")["markdownPath"])
	assert.Equal(t, "ppf-group/AVD/runbook.md", api.body("/api/md2pdf")["markdownPath"])
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, func(f *fakeAPI) { f.failRoute = "/api/md2docx" })
	c := NewClient(Config{GeneratorURL: api.srv.URL})

	res, err := c.Run(context.Background(), RunRequest{CustomerID: "c", ServiceArea: "s", FileName: "f"})

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.NotEmpty(t, res.MarkdownPath)
	assert.Empty(t, res.DocxPath)
	assert.NotContains(t, api.callList(), "POST /api/md2pdf")
}

func TestRun_CustomPrefix(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, func(f *fakeAPI) { f.generated = "rb/c/s/r.md" })
	c := NewClient(Config{GeneratorURL: api.srv.URL})

	_, err := c.Run(context.Background(), RunRequest{CustomerID: "c", ServiceArea: "s", FileName: "f", ContainerPrefix: "rb/"})

	require.NoError(t, err)
	assert.Equal(t, "c/s/r.md", api.body("/api/md2docx")["markdownPath"])
}
