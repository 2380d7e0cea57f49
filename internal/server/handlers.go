package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	runbook "github.com/qprjack86/AISupportRunbook"
	"github.com/qprjack86/AISupportRunbook/internal/blobstore"
)

// convertResponse is the success body; exactly one path field is set.
type convertResponse struct {
	Status   string `json:"status"`
	DocxPath string `json:"docxPath,omitempty"`
	PdfPath  string `json:"pdfPath,omitempty"`
}

type uploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
}

type statusResponse struct {
	Status string `json:"status"`
	Chrome string `json:"chrome,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleConvertDOCX(w http.ResponseWriter, r *http.Request) {
	s.handleConvert(w, r, s.converter.ConvertDOCX, func(p string) convertResponse {
		return convertResponse{Status: "ok", DocxPath: p}
	})
}

func (s *Server) handleConvertPDF(w http.ResponseWriter, r *http.Request) {
	s.handleConvert(w, r, s.converter.ConvertPDF, func(p string) convertResponse {
		return convertResponse{Status: "ok", PdfPath: p}
	})
}

func (s *Server) handleConvert(
	w http.ResponseWriter,
	r *http.Request,
	convert func(context.Context, string) (string, error),
	respond func(string) convertResponse,
) {
	req, err := decodeJSON[convertRequest](w, r)
	if err != nil {
		respondText(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondText(w, http.StatusBadRequest, clientMessage(err))
		return
	}

	out, err := convert(r.Context(), req.MarkdownPath)
	if err != nil {
		s.fail(w, r, err, req.MarkdownPath)
		return
	}
	respondJSON(w, http.StatusOK, respond(out))
}

func (s *Server) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[uploadURLRequest](w, r)
	if err != nil {
		respondText(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondText(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.uploads == nil {
		s.fail(w, r, errors.New("upload URLs are not configured"), req.blobPath())
		return
	}

	u, err := s.uploads.UploadURL(r.Context(), req.blobPath(), s.opts.UploadTTL)
	if err != nil {
		s.fail(w, r, err, req.blobPath())
		return
	}
	respondJSON(w, http.StatusOK, uploadURLResponse{UploadURL: u})
}

// handleBlobPut accepts a direct upload the way a pre-signed blob URL would.
func (s *Server) handleBlobPut(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBlobUpload))
	if err != nil {
		respondText(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.opts.Blobs.Put(r.Context(), path, data, r.Header.Get("Content-Type")); err != nil {
		if errors.Is(err, blobstore.ErrInvalidPath) {
			respondText(w, http.StatusBadRequest, err.Error())
			return
		}
		s.fail(w, r, err, path)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// handleReady reports whether a Chrome binary is available for PDF output.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	bin, err := s.lookPath(s.opts.BrowserBin)
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", Chrome: bin})
}

// fail logs err in full and answers with its message only.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, path string) {
	status := statusFor(err)
	zerolog.Ctx(r.Context()).Error().
		Err(err).
		Str("blob_path", path).
		Int("status", status).
		Msg("request failed")
	respondText(w, status, err.Error())
}

// statusFor maps conversion errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, runbook.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage strips the sentinel prefix from validation errors so the
// client sees only the field message.
func clientMessage(err error) string {
	msg := err.Error()
	prefix := runbook.ErrValidation.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
