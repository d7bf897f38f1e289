// Package pdfextract pulls plain text out of uploaded PDF CVs.
package pdfextract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Extracted text below this length is flagged as likely image-based.
const minTextLength = 50

// Result holds the extracted text plus extraction metadata surfaced to the
// upload endpoint and logs.
type Result struct {
	Text      string
	Pages     int
	CharCount int
	Method    string
	Success   bool
	Error     string
}

type Extractor struct {
	logger *zap.Logger
}

func New(lg *zap.Logger) *Extractor {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Extractor{logger: lg}
}

// Extract parses the PDF bytes and returns the text of all pages. A parse
// failure is reported inside the result, not as a Go error, so callers can
// fall back to treating the upload as unusable without aborting.
func (e *Extractor) Extract(content []byte) (result *Result) {
	result = &Result{Method: "pdf"}

	// The pdf library panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			result = &Result{Method: "pdf", Error: fmt.Sprintf("parse pdf: %v", r)}
			e.logger.Warn("pdf parse panicked", zap.Any("panic", r))
		}
	}()

	if len(content) == 0 {
		result.Error = "empty file"
		return result
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		result.Error = fmt.Sprintf("parse pdf: %v", err)
		e.logger.Warn("pdf parse failed", zap.Error(err))
		return result
	}

	result.Pages = reader.NumPage()

	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("pdf page extraction failed",
				zap.Int("page", pageNum),
				zap.Error(err),
			)
			continue
		}

		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(text)
	}

	result.Text = strings.TrimSpace(builder.String())
	result.CharCount = len(result.Text)

	if result.CharCount == 0 {
		result.Error = "no text extracted"
		return result
	}

	result.Success = true
	if result.CharCount < minTextLength {
		result.Error = "extracted text is very short - PDF may be image-based or poorly formatted"
		e.logger.Warn("minimal text extracted from pdf", zap.Int("char_count", result.CharCount))
	} else {
		e.logger.Info("extracted text from pdf",
			zap.Int("pages", result.Pages),
			zap.Int("char_count", result.CharCount),
		)
	}

	return result
}
