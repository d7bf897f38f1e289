package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/odellis/hireflow/internal/ai"
	"github.com/odellis/hireflow/internal/logger"
	"go.uber.org/zap"
)

//go:embed cv_prompt.md
var cvPromptTemplate string

const defaultJobDescription = "Software Engineer position"

// CVAnalyzer builds a personalized screening-interview guide from raw CV
// text. Failures propagate to the caller, which decides whether to fall back
// to a deterministic analysis.
type CVAnalyzer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewCVAnalyzer(generator contentGenerator, lg *zap.Logger, maxLogLength int) *CVAnalyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if lg == nil {
		lg = zap.NewNop()
	}

	return &CVAnalyzer{
		generator: generator,
		logger:    lg,
		maxLogLen: maxLogLength,
	}
}

func (a *CVAnalyzer) AnalyzeCV(ctx context.Context, candidateName, cvText, jobDescription string) (*ai.CVAnalysis, error) {
	cvText = strings.TrimSpace(cvText)
	if cvText == "" {
		return nil, fmt.Errorf("cv text is required")
	}

	if strings.TrimSpace(jobDescription) == "" {
		jobDescription = defaultJobDescription
	}

	prompt := strings.ReplaceAll(cvPromptTemplate, "{{CANDIDATE_NAME}}", candidateName)
	prompt = strings.ReplaceAll(prompt, "{{CV_TEXT}}", cvText)
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)

	a.logger.Debug("gemini cv analysis request",
		zap.String("candidate_name", candidateName),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini cv analysis response",
		zap.String("candidate_name", candidateName),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseCVAnalysis(raw)
}

func parseCVAnalysis(raw string) (*ai.CVAnalysis, error) {
	var data map[string]any
	if err := decodeObject(raw, &data); err != nil {
		return nil, err
	}

	analysis := &ai.CVAnalysis{
		CandidateName:     coerceString(data["candidate_name"]),
		KeySkills:         coerceStrings(data["key_skills"]),
		ExperienceYears:   coerceInt(data["experience_years"]),
		Education:         coerceString(data["education"]),
		Highlights:        coerceStrings(data["highlights"]),
		MatchScore:        coerceInt(data["match_score"]),
		Summary:           coerceString(data["summary"]),
		EstimatedDuration: coerceString(data["estimated_duration"]),
		FocusAreas:        coerceStrings(data["interview_focus_areas"]),
	}

	if analysis.EstimatedDuration == "" {
		analysis.EstimatedDuration = "30 minutes"
	}

	questions, ok := data["interview_questions"].([]any)
	if !ok {
		return analysis, nil
	}

	for _, item := range questions {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		question := ai.InterviewQuestion{
			Question:      coerceString(entry["question"]),
			Purpose:       coerceString(entry["purpose"]),
			FollowUpHints: coerceString(entry["follow_up_hints"]),
		}
		if question.Question == "" {
			continue
		}
		analysis.Questions = append(analysis.Questions, question)
	}

	return analysis, nil
}
