package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/odellis/hireflow/internal/ai"
	"github.com/odellis/hireflow/internal/logger"
	"go.uber.org/zap"
)

//go:embed qa_prompt.md
var qaPromptTemplate string

//go:embed summary_prompt.md
var summaryPromptTemplate string

//go:embed evaluate_prompt.md
var evaluatePromptTemplate string

// InterviewAnalyzer runs the three transcript-analysis stages against the
// model. Each stage returns its own error so callers can degrade per stage.
type InterviewAnalyzer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewInterviewAnalyzer(generator contentGenerator, lg *zap.Logger, maxLogLength int) *InterviewAnalyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if lg == nil {
		lg = zap.NewNop()
	}

	return &InterviewAnalyzer{
		generator: generator,
		logger:    lg,
		maxLogLen: maxLogLength,
	}
}

func (a *InterviewAnalyzer) ExtractQA(ctx context.Context, transcript string) ([]ai.QAPair, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, fmt.Errorf("transcript is required")
	}

	prompt := strings.ReplaceAll(qaPromptTemplate, "{{TRANSCRIPT}}", transcript)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini qa extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	var items []map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &items); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	pairs := make([]ai.QAPair, 0, len(items))
	for i, item := range items {
		pair := ai.QAPair{
			Number:   coerceInt(item["question_number"]),
			Question: coerceString(item["question"]),
			Answer:   coerceString(item["answer"]),
			Category: coerceString(item["category"]),
		}
		if pair.Number == 0 {
			pair.Number = i + 1
		}
		if pair.Question == "" {
			continue
		}
		pairs = append(pairs, pair)
	}

	return pairs, nil
}

func (a *InterviewAnalyzer) SummarizeAnswer(ctx context.Context, qa ai.QAPair) (*ai.AnswerSummary, error) {
	prompt := strings.ReplaceAll(summaryPromptTemplate, "{{QUESTION}}", qa.Question)
	prompt = strings.ReplaceAll(prompt, "{{ANSWER}}", qa.Answer)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := decodeObject(raw, &data); err != nil {
		return nil, err
	}

	summary := &ai.AnswerSummary{
		Summary:      coerceString(data["summary"]),
		KeyPoints:    coerceStrings(data["key_points"]),
		Quality:      coerceString(data["quality"]),
		Completeness: coerceString(data["completeness"]),
	}

	if summary.Quality == "" {
		summary.Quality = ai.QualityFair
	}
	if summary.Completeness == "" {
		summary.Completeness = ai.CompletenessPartial
	}

	return summary, nil
}

func (a *InterviewAnalyzer) Evaluate(ctx context.Context, candidateName, position string, qas []ai.QAPair) (*ai.Evaluation, error) {
	if len(qas) == 0 {
		return nil, fmt.Errorf("no question/answer pairs to evaluate")
	}

	var builder strings.Builder
	for _, qa := range qas {
		quality := qa.Quality
		if quality == "" {
			quality = ai.QualityFair
		}
		fmt.Fprintf(&builder, "Q%d: %s\n", qa.Number, qa.Question)
		fmt.Fprintf(&builder, "A%d: %s\n", qa.Number, qa.Answer)
		fmt.Fprintf(&builder, "Quality: %s\n\n", quality)
	}

	prompt := strings.ReplaceAll(evaluatePromptTemplate, "{{POSITION}}", position)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_NAME}}", candidateName)
	prompt = strings.ReplaceAll(prompt, "{{QA_TEXT}}", builder.String())

	a.logger.Debug("gemini evaluation request",
		zap.String("candidate_name", candidateName),
		zap.Int("qa_count", len(qas)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini evaluation response",
		zap.String("candidate_name", candidateName),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseEvaluation(raw)
}

func parseEvaluation(raw string) (*ai.Evaluation, error) {
	var data map[string]any
	if err := decodeObject(raw, &data); err != nil {
		return nil, err
	}

	eval := &ai.Evaluation{
		OverallScore:        coerceInt(data["overall_score"]),
		Recommendation:      coerceString(data["recommendation"]),
		Strengths:           coerceStrings(data["strengths"]),
		ImprovementAreas:    coerceStrings(data["improvement_areas"]),
		TechnicalCompetence: coerceCompetency(data["technical_competence"]),
		CommunicationSkills: coerceCompetency(data["communication_skills"]),
		CulturalFit:         coerceCompetency(data["cultural_fit"]),
		DetailedComments:    coerceString(data["detailed_comments"]),
	}

	if eval.Recommendation == "" {
		eval.Recommendation = ai.RecommendFurtherInterview
	}

	scores, ok := data["question_scores"].([]any)
	if !ok {
		return eval, nil
	}

	for _, item := range scores {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		eval.QuestionScores = append(eval.QuestionScores, ai.QuestionScore{
			Number:   coerceInt(entry["question_number"]),
			Score:    coerceInt(entry["score"]),
			Feedback: coerceString(entry["feedback"]),
		})
	}

	return eval, nil
}

func coerceCompetency(v any) ai.CompetencyScore {
	entry, ok := v.(map[string]any)
	if !ok {
		return ai.CompetencyScore{}
	}
	return ai.CompetencyScore{
		Score:    coerceInt(entry["score"]),
		Comments: coerceString(entry["comments"]),
	}
}
