package heuristic

import (
	"fmt"

	"github.com/odellis/hireflow/internal/ai"
)

// PlaceholderSummary stands in for a failed per-answer summary so the rest
// of the transcript analysis can proceed.
func PlaceholderSummary() *ai.AnswerSummary {
	return &ai.AnswerSummary{
		Summary:      "Summary not available",
		Quality:      ai.QualityFair,
		Completeness: ai.CompletenessPartial,
	}
}

// NeutralEvaluation is the evaluation recorded when the scoring stage fails.
// It deliberately lands in the middle of the scale and defers the decision.
func NeutralEvaluation(reason string) *ai.Evaluation {
	const comment = "Unable to evaluate due to system error"

	return &ai.Evaluation{
		OverallScore:        70,
		Recommendation:      ai.RecommendFurtherInterview,
		Strengths:           []string{"Interview completed"},
		ImprovementAreas:    []string{"Evaluation system error"},
		TechnicalCompetence: ai.CompetencyScore{Score: 70, Comments: comment},
		CommunicationSkills: ai.CompetencyScore{Score: 70, Comments: comment},
		CulturalFit:         ai.CompetencyScore{Score: 70, Comments: comment},
		DetailedComments:    fmt.Sprintf("System error occurred during evaluation: %s", reason),
	}
}
