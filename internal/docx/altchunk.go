package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"text/template"

	"github.com/google/uuid"
)

// Package part names.
const (
	contentTypesPart  = "[Content_Types].xml"
	rootRelsPart      = "_rels/.rels"
	documentPart      = "word/document.xml"
	documentRelsPart  = "word/_rels/document.xml.rels"
	chunkPart         = "word/afchunk.mht"
	chunkRelationship = "htmlChunk"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="mht" ContentType="message/rfc822"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="` + chunkRelationship + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/aFChunk" Target="/` + chunkPart + `"/>
</Relationships>`

var documentTemplate = template.Must(template.New("document.xml").Parse(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<w:body>
<w:altChunk r:id="{{.ChunkID}}"/>
<w:sectPr>
<w:pgSz w:w="{{.Width}}" w:h="{{.Height}}" w:orient="{{.Orient}}"/>
<w:pgMar w:top="{{.Top}}" w:right="{{.Right}}" w:bottom="{{.Bottom}}" w:left="{{.Left}}" w:header="720" w:footer="720" w:gutter="0"/>
</w:sectPr>
</w:body>
</w:document>`))

type sectionData struct {
	ChunkID                  string
	Width, Height            int
	Orient                   string
	Top, Right, Bottom, Left int
}

// AltChunkConverter builds a DOCX whose body is the HTML document itself.
type AltChunkConverter struct {
	Page Geometry
}

// NewAltChunkConverter creates an AltChunkConverter with the given page layout.
func NewAltChunkConverter(page Geometry) *AltChunkConverter {
	return &AltChunkConverter{Page: page}
}

// FromHTML packages htmlContent as a Word document.
func (c *AltChunkConverter) FromHTML(ctx context.Context, htmlContent string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Boundary derives from the content so identical input yields identical packages.
	boundary := "mht-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(htmlContent)).String()
	mht, err := buildMHT(htmlContent, boundary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDOCXGeneration, err)
	}

	var doc bytes.Buffer
	if err := documentTemplate.Execute(&doc, c.section()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDOCXGeneration, err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		data []byte
	}{
		{contentTypesPart, []byte(contentTypesXML)},
		{rootRelsPart, []byte(rootRelsXML)},
		{documentPart, doc.Bytes()},
		{documentRelsPart, []byte(documentRelsXML)},
		{chunkPart, mht},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", ErrDOCXGeneration, p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("%w: writing %s: %v", ErrDOCXGeneration, p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDOCXGeneration, err)
	}
	return buf.Bytes(), nil
}

func (c *AltChunkConverter) section() sectionData {
	orient := "portrait"
	if c.Page.Width > c.Page.Height {
		orient = "landscape"
	}
	return sectionData{
		ChunkID: chunkRelationship,
		Width:   twips(c.Page.Width),
		Height:  twips(c.Page.Height),
		Orient:  orient,
		Top:     twips(c.Page.MarginTop),
		Right:   twips(c.Page.MarginRight),
		Bottom:  twips(c.Page.MarginBottom),
		Left:    twips(c.Page.MarginLeft),
	}
}

// buildMHT wraps htmlContent in a single-part multipart/related message,
// the web archive format Word accepts for altChunk imports.
func buildMHT(htmlContent, boundary string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.SetBoundary(boundary); err != nil {
		return nil, err
	}

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/html; charset="utf-8"`},
		"Content-Transfer-Encoding": {"quoted-printable"},
		"Content-Location":          {"file:///C:/runbook/document.html"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeQuotedPrintable(part, htmlContent); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "MIME-Version: 1.0\r\nContent-Type: multipart/related; type=\"text/html\"; boundary=\"%s\"\r\n\r\n", boundary)
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func writeQuotedPrintable(w io.Writer, s string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := io.WriteString(qp, s); err != nil {
		return err
	}
	return qp.Close()
}
