package gemini

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", "", 0, zap.NewNop()); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestGenerateContentRejectsEmptyPrompt(t *testing.T) {
	g := &Generator{}

	if _, err := g.GenerateContent(context.Background(), "   "); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

func TestModelOnNilGenerator(t *testing.T) {
	var g *Generator

	if g.Model() != "" {
		t.Fatalf("expected empty model for nil generator")
	}
}
