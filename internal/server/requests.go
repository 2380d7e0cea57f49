package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	runbook "github.com/qprjack86/AISupportRunbook"
)

// Body limits. An oversized body is a 400 like any other bad request.
const (
	maxRequestBody = 1 << 20
	maxBlobUpload  = 32 << 20
)

// Validation messages returned verbatim to clients.
const (
	msgMarkdownPathRequired = "markdownPath required"
	msgUploadFieldsRequired = "customerId, serviceArea, fileName required"
)

// convertRequest is the body of md2docx and md2pdf. Other fields are ignored.
type convertRequest struct {
	MarkdownPath string `json:"markdownPath"`
}

// Validate reports a missing path with the fixed client message, then
// checks the .md suffix.
func (r convertRequest) Validate() error {
	if err := validation.Validate(r.MarkdownPath, validation.Required.Error(msgMarkdownPathRequired)); err != nil {
		return err
	}
	return runbook.ValidateMarkdownPath(r.MarkdownPath)
}

// uploadURLRequest is the body of /api/sas.
type uploadURLRequest struct {
	CustomerID  string `json:"customerId"`
	ServiceArea string `json:"serviceArea"`
	FileName    string `json:"fileName"`
}

func (r uploadURLRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.CustomerID, validation.Required),
		validation.Field(&r.ServiceArea, validation.Required),
		validation.Field(&r.FileName, validation.Required),
	)
	if err != nil {
		return errors.New(msgUploadFieldsRequired)
	}
	return nil
}

// blobPath is where the upload lands in the documents container.
func (r uploadURLRequest) blobPath() string {
	return fmt.Sprintf("%s/%s/raw/%s", r.CustomerID, r.ServiceArea, r.FileName)
}

// decodeJSON reads a bounded JSON body. An empty or malformed body yields
// the zero value so field validation reports what is missing; only an
// oversized body is an error.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var v T
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&v)
	if err == nil {
		return v, nil
	}

	var zero T
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return zero, err
	}
	return zero, nil
}
