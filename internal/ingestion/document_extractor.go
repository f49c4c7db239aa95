package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	// BinarySampleSize is the number of bytes to sample for binary detection
	BinarySampleSize = 1000
	// BinaryThreshold is the proportion of non-printable characters that indicates binary data
	BinaryThreshold = 0.3
)

var (
	// ErrUnsupportedType is returned for documents that are not PDF, DOCX or plain text
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNoText is returned when a document parses but yields no text (e.g. scanned images)
	ErrNoText = errors.New("no extractable text")
)

// Document is an uploaded file awaiting text extraction
type Document struct {
	Name    string
	Content []byte
}

// ExtractionError reports why a document's text could not be extracted
type ExtractionError struct {
	Document string
	Reason   string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Document, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Document, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor turns a document into plain text
type Extractor interface {
	ExtractText(doc Document) (string, error)
}

// DocumentExtractor extracts text from PDF, DOCX and TXT documents
type DocumentExtractor struct{}

// NewDocumentExtractor creates a new extractor
func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

// Format identifies the document kind from its extension or, failing that, its magic bytes
func Format(doc Document) string {
	ext := strings.ToLower(filepath.Ext(doc.Name))
	switch ext {
	case ".pdf", ".docx", ".txt":
		return ext
	}

	switch {
	case bytes.HasPrefix(doc.Content, []byte("%PDF-")):
		return ".pdf"
	case bytes.HasPrefix(doc.Content, []byte("PK\x03\x04")):
		return ".docx"
	}
	return ext
}

// IsSupported reports whether a file name has an extension the extractor handles
func IsSupported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".docx", ".txt":
		return true
	}
	return false
}

// ExtractText extracts text from a PDF, DOCX or TXT document
func (e *DocumentExtractor) ExtractText(doc Document) (string, error) {
	var (
		text string
		err  error
	)

	switch Format(doc) {
	case ".txt":
		if IsBinaryData(string(doc.Content)) {
			return "", &ExtractionError{Document: doc.Name, Reason: "content appears to be binary"}
		}
		text = string(doc.Content)
	case ".pdf":
		text, err = extractPDF(doc.Content)
		if err != nil {
			return "", &ExtractionError{Document: doc.Name, Reason: "failed to read pdf", Err: err}
		}
	case ".docx":
		text, err = extractDOCX(doc.Content)
		if err != nil {
			return "", &ExtractionError{Document: doc.Name, Reason: "failed to read docx", Err: err}
		}
	default:
		return "", &ExtractionError{Document: doc.Name, Reason: "cannot extract", Err: ErrUnsupportedType}
	}

	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Document: doc.Name, Reason: "empty document", Err: ErrNoText}
	}

	return text, nil
}

// extractPDF reads the plain text of every page
func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// extractDOCX reads word/document.xml and keeps only its text runs
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return stripWordXML(doc.Editable().GetContent())
}

// stripWordXML flattens WordprocessingML into text with one line per paragraph
func stripWordXML(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				sb.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String(), nil
}

// IsBinaryData checks if content appears to be binary (PDF/ZIP markers)
func IsBinaryData(content string) bool {
	if len(content) == 0 {
		return false
	}

	// Check for PDF magic number
	if strings.HasPrefix(content, "%PDF-") {
		return true
	}

	// Check for ZIP magic number (DOCX files)
	if len(content) >= 2 && content[:2] == "PK" {
		return true
	}

	sampleSize := min(BinarySampleSize, len(content))
	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		ch := content[i]
		if ch < 32 && ch != '\n' && ch != '\r' && ch != '\t' {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(sampleSize) > BinaryThreshold
}
