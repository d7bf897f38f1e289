package gemini

import (
	"context"
	"strings"
	"testing"

	"github.com/odellis/hireflow/internal/ai"
	"go.uber.org/zap"
)

func TestExtractQA(t *testing.T) {
	stub := &stubGenerator{response: `[
		{"question_number": 1, "question": "Tell me about yourself.", "answer": "I build services in Go.", "category": "Background"},
		{"question_number": 2, "question": "Why this role?", "answer": "I like the product.", "category": "Motivation"}
	]`}
	analyzer := NewInterviewAnalyzer(stub, zap.NewNop(), 0)

	pairs, err := analyzer.ExtractQA(context.Background(), "Interviewer: Tell me about yourself...")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Category != "Background" {
		t.Fatalf("unexpected category: %s", pairs[0].Category)
	}
	if pairs[1].Number != 2 {
		t.Fatalf("unexpected number: %d", pairs[1].Number)
	}
}

func TestExtractQANumbersMissing(t *testing.T) {
	stub := &stubGenerator{response: `[
		{"question": "First?", "answer": "A"},
		{"question": "Second?", "answer": "B"}
	]`}
	analyzer := NewInterviewAnalyzer(stub, zap.NewNop(), 0)

	pairs, err := analyzer.ExtractQA(context.Background(), "transcript")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pairs[0].Number != 1 || pairs[1].Number != 2 {
		t.Fatalf("expected sequential numbering, got %d %d", pairs[0].Number, pairs[1].Number)
	}
}

func TestExtractQAEmptyTranscript(t *testing.T) {
	analyzer := NewInterviewAnalyzer(&stubGenerator{}, zap.NewNop(), 0)

	if _, err := analyzer.ExtractQA(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty transcript")
	}
}

func TestSummarizeAnswer(t *testing.T) {
	stub := &stubGenerator{response: `{
		"summary": "Solid overview of career history.",
		"key_points": ["5 years in Go", "Led a team of 4"],
		"quality": "Good",
		"completeness": "Complete"
	}`}
	analyzer := NewInterviewAnalyzer(stub, zap.NewNop(), 0)

	summary, err := analyzer.SummarizeAnswer(context.Background(), ai.QAPair{
		Number:   1,
		Question: "Tell me about yourself.",
		Answer:   "I have five years of Go experience...",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Quality != ai.QualityGood {
		t.Fatalf("unexpected quality: %s", summary.Quality)
	}
	if summary.Completeness != ai.CompletenessComplete {
		t.Fatalf("unexpected completeness: %s", summary.Completeness)
	}
	if len(summary.KeyPoints) != 2 {
		t.Fatalf("expected 2 key points, got %d", len(summary.KeyPoints))
	}
}

func TestSummarizeAnswerDefaultsGrades(t *testing.T) {
	stub := &stubGenerator{response: `{"summary": "Short."}`}
	analyzer := NewInterviewAnalyzer(stub, zap.NewNop(), 0)

	summary, err := analyzer.SummarizeAnswer(context.Background(), ai.QAPair{Question: "Q", Answer: "A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Quality != ai.QualityFair {
		t.Fatalf("expected fair default, got %s", summary.Quality)
	}
	if summary.Completeness != ai.CompletenessPartial {
		t.Fatalf("expected partial default, got %s", summary.Completeness)
	}
}

func TestEvaluate(t *testing.T) {
	stub := &stubGenerator{response: `{
		"overall_score": 85,
		"recommendation": "Hire",
		"strengths": ["Strong technical background"],
		"improvement_areas": ["More concrete examples"],
		"technical_competence": {"score": 85, "comments": "Solid"},
		"communication_skills": {"score": 90, "comments": "Clear"},
		"cultural_fit": {"score": 80, "comments": "Aligned"},
		"detailed_comments": "Strong potential.",
		"question_scores": [
			{"question_number": 1, "score": 85, "feedback": "Good response"}
		]
	}`}
	analyzer := NewInterviewAnalyzer(stub, zap.NewNop(), 0)

	qas := []ai.QAPair{
		{Number: 1, Question: "Tell me about yourself.", Answer: "Go engineer.", Quality: ai.QualityGood},
	}

	eval, err := analyzer.Evaluate(context.Background(), "Jordan Lee", "Backend Engineer", qas)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if eval.OverallScore != 85 {
		t.Fatalf("expected score 85, got %d", eval.OverallScore)
	}
	if eval.Recommendation != ai.RecommendHire {
		t.Fatalf("unexpected recommendation: %s", eval.Recommendation)
	}
	if eval.CommunicationSkills.Score != 90 {
		t.Fatalf("unexpected communication score: %d", eval.CommunicationSkills.Score)
	}
	if len(eval.QuestionScores) != 1 {
		t.Fatalf("expected 1 question score, got %d", len(eval.QuestionScores))
	}

	if !strings.Contains(stub.lastPrompt, "Q1: Tell me about yourself.") {
		t.Fatalf("expected qa text in prompt")
	}
	if !strings.Contains(stub.lastPrompt, "Quality: Good") {
		t.Fatalf("expected quality annotation in prompt")
	}
}

func TestEvaluateRequiresPairs(t *testing.T) {
	analyzer := NewInterviewAnalyzer(&stubGenerator{}, zap.NewNop(), 0)

	if _, err := analyzer.Evaluate(context.Background(), "X", "Y", nil); err == nil {
		t.Fatalf("expected error for empty qa set")
	}
}
