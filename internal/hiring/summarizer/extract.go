package summarizer

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// ErrPDFDisabled is returned for PDF resumes when no unipdf license has
// been activated.
var ErrPDFDisabled = errors.New("PDF resumes need a unipdf license key")

// SetLicense activates a metered unipdf key. PDF extraction fails without
// one.
func SetLicense(apiKey string) error {
	if err := license.SetMeteredKey(apiKey); err != nil {
		return fmt.Errorf("failed to activate unipdf license: %w", err)
	}
	return nil
}

// IsPDF reports whether filename names a PDF.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// ExtractText returns the plain text of a resume. PDFs are parsed page by
// page; .txt and .md files are used as they are.
func ExtractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("resume %s is not valid UTF-8", filename)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		return "", fmt.Errorf("unsupported resume type %q", filepath.Ext(filename))
	}
}

// Supported reports whether ExtractText can read a file with this name.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

func extractPDF(data []byte) (string, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to get page count: %w", err)
	}
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("no text could be extracted from the PDF")
	}
	return out, nil
}
