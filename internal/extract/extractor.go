// Package extract produces searchable plain text from document bytes.
// PDF content is parsed with two independent backends tried in order;
// real-world documents vary widely in structural conformance and a
// file one parser rejects is often readable by the other. Failure never
// escapes this package: unreadable documents yield an Extraction with
// OK=false.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
	"github.com/l8testudy/drivevault/internal/logger"
)

// Ensure Service implements the port.
var _ driven.TextExtractor = (*Service)(nil)

// Service is the text extractor adapter.
type Service struct{}

// NewService creates a text extractor.
func NewService() *Service {
	return &Service{}
}

// Extract attempts to pull plain text and a page count out of data.
// Plain-text content passes through directly; PDFs go through the
// parser backends. The returned text is whitespace-normalised.
func (s *Service) Extract(_ context.Context, data []byte, mimeType string) domain.Extraction {
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}

	if isPlainText(mimeType) {
		return domain.Extraction{Text: Clean(string(data)), PageCount: 1, OK: true}
	}

	text, pages, err := extractPDF(data)
	if err != nil {
		logger.Debug("Extraction failed: %v", err)
		return domain.Extraction{}
	}
	return domain.Extraction{Text: Clean(text), PageCount: pages, OK: true}
}

// extractPDF tries unipdf first, then the ledongthuc backend.
func extractPDF(data []byte) (string, int, error) {
	text, pages, err := extractWithUnipdf(data)
	if err == nil {
		return text, pages, nil
	}

	text, pages, err2 := extractWithLedongthuc(data)
	if err2 == nil {
		return text, pages, nil
	}

	return "", 0, fmt.Errorf("all backends failed: %v; %v", err, err2)
}

func extractWithUnipdf(data []byte) (text string, pages int, err error) {
	// Malformed documents can panic deep inside the parser; that must
	// not cross the extractor boundary.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unipdf panicked: %v", r)
		}
	}()

	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("opening PDF: %w", err)
	}

	pages, err = reader.GetNumPages()
	if err != nil {
		return "", 0, fmt.Errorf("counting pages: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", 0, fmt.Errorf("page %d extractor: %w", i, err)
		}

		pageText, err := ex.ExtractText()
		if err != nil {
			return "", 0, fmt.Errorf("page %d text: %w", i, err)
		}

		sb.WriteString(pageText)
		sb.WriteString("\n\n")
	}

	return sb.String(), pages, nil
}

func extractWithLedongthuc(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf backend panicked: %v", r)
		}
	}()

	reader, err := ledongthuc.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("opening PDF: %w", err)
	}

	pages = reader.NumPage()

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("page %d text: %w", i, err)
		}

		sb.WriteString(pageText)
		sb.WriteString("\n\n")
	}

	return sb.String(), pages, nil
}

func isPlainText(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}

	switch {
	case strings.HasPrefix(mimeType, "application/json"),
		strings.HasPrefix(mimeType, "application/xml"),
		strings.HasPrefix(mimeType, "application/x-yaml"):
		return true
	}
	return false
}
