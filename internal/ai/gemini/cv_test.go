package gemini

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestCVAnalyzerParsesGuide(t *testing.T) {
	stub := &stubGenerator{response: `{
		"candidate_name": "Jordan Lee",
		"key_skills": ["Go", "Kubernetes"],
		"experience_years": 6,
		"education": "BSc Computer Science",
		"highlights": ["Led platform migration"],
		"match_score": 82,
		"summary": "Strong backend engineer.",
		"interview_questions": [
			{"question": "Hi Jordan, can you tell me about yourself?", "purpose": "Opening", "follow_up_hints": "Listen for career progression"},
			{"question": "Tell me about the platform migration.", "purpose": "Depth", "follow_up_hints": "Ask about their role"}
		],
		"estimated_duration": "30 minutes",
		"interview_focus_areas": ["Background", "Technical skills"]
	}`}
	analyzer := NewCVAnalyzer(stub, zap.NewNop(), 0)

	analysis, err := analyzer.AnalyzeCV(context.Background(), "Jordan Lee", "CV text here", "Backend Engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analysis.CandidateName != "Jordan Lee" {
		t.Fatalf("unexpected candidate name: %s", analysis.CandidateName)
	}
	if analysis.MatchScore != 82 {
		t.Fatalf("expected match score 82, got %d", analysis.MatchScore)
	}
	if analysis.ExperienceYears != 6 {
		t.Fatalf("expected 6 years, got %d", analysis.ExperienceYears)
	}
	if len(analysis.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(analysis.Questions))
	}
	if analysis.Questions[0].Purpose != "Opening" {
		t.Fatalf("unexpected purpose: %s", analysis.Questions[0].Purpose)
	}

	if !strings.Contains(stub.lastPrompt, "CV text here") {
		t.Fatalf("expected cv text in prompt")
	}
	if !strings.Contains(stub.lastPrompt, "Backend Engineer") {
		t.Fatalf("expected job description in prompt")
	}
}

func TestCVAnalyzerDefaultsJobDescription(t *testing.T) {
	stub := &stubGenerator{response: `{"candidate_name": "X", "match_score": 50}`}
	analyzer := NewCVAnalyzer(stub, zap.NewNop(), 0)

	analysis, err := analyzer.AnalyzeCV(context.Background(), "X", "some cv", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stub.lastPrompt, defaultJobDescription) {
		t.Fatalf("expected default job description in prompt")
	}
	if analysis.EstimatedDuration != "30 minutes" {
		t.Fatalf("expected default duration, got %s", analysis.EstimatedDuration)
	}
}

func TestCVAnalyzerRequiresText(t *testing.T) {
	analyzer := NewCVAnalyzer(&stubGenerator{}, zap.NewNop(), 0)

	if _, err := analyzer.AnalyzeCV(context.Background(), "X", "   ", ""); err == nil {
		t.Fatalf("expected error for empty cv text")
	}
}

func TestCVAnalyzerBadJSON(t *testing.T) {
	stub := &stubGenerator{response: "not json"}
	analyzer := NewCVAnalyzer(stub, zap.NewNop(), 0)

	if _, err := analyzer.AnalyzeCV(context.Background(), "X", "cv", ""); err == nil {
		t.Fatalf("expected parse error")
	}
}
