package pdfextract

import (
	"testing"

	"go.uber.org/zap"
)

func TestExtractEmptyInput(t *testing.T) {
	extractor := New(zap.NewNop())

	result := extractor.Extract(nil)
	if result.Success {
		t.Fatalf("expected failure for empty input")
	}
	if result.Error != "empty file" {
		t.Fatalf("unexpected error: %s", result.Error)
	}
}

func TestExtractGarbageInput(t *testing.T) {
	extractor := New(zap.NewNop())

	result := extractor.Extract([]byte("this is definitely not a pdf document"))
	if result.Success {
		t.Fatalf("expected failure for garbage input")
	}
	if result.Error == "" {
		t.Fatalf("expected error message")
	}
	if result.Text != "" {
		t.Fatalf("expected no text, got %q", result.Text)
	}
}

func TestExtractTruncatedHeader(t *testing.T) {
	extractor := New(zap.NewNop())

	result := extractor.Extract([]byte("%PDF-1.4\n"))
	if result.Success {
		t.Fatalf("expected failure for truncated pdf")
	}
	if result.Error == "" {
		t.Fatalf("expected error message")
	}
}
