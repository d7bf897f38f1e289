package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/odellis/hireflow/internal/ai"
	"github.com/odellis/hireflow/internal/ai/heuristic"
	"go.uber.org/zap"
)

const TaskAnalyzeInterview = "analyze_interview"

// InterviewAnalyzer grades interview transcripts in three stages: segment
// into Q&A pairs, summarize each answer, then score the candidate overall.
// The later stages degrade per-answer and per-evaluation instead of failing
// the task; only an empty extraction aborts, since there is nothing left to
// analyze.
type InterviewAnalyzer struct {
	store  *Store
	model  ai.InterviewAnalyzer
	logger *zap.Logger
}

func NewInterviewAnalyzer(store *Store, model ai.InterviewAnalyzer, lg *zap.Logger) *InterviewAnalyzer {
	return &InterviewAnalyzer{store: store, model: model, logger: lg}
}

func (a *InterviewAnalyzer) Role() RoleName { return RoleInterviewAnalyzer }

type analyzeInterviewPayload struct {
	TaskID        string `mapstructure:"task_id"`
	CandidateName string `mapstructure:"candidate_name"`
	Position      string `mapstructure:"position"`
	Transcript    string `mapstructure:"transcript"`
}

func (a *InterviewAnalyzer) HandleMessage(ctx context.Context, msg *Message) error {
	if msg.Kind != KindTaskAssignment || payloadString(msg.Payload, "task_type") != TaskAnalyzeInterview {
		return nil
	}

	var req analyzeInterviewPayload
	if err := decodePayload(msg.Payload, &req); err != nil {
		return err
	}
	if req.Position == "" {
		req.Position = defaultPosition
	}
	if req.CandidateName == "" {
		req.CandidateName = "Candidate"
	}

	if strings.TrimSpace(req.Transcript) == "" {
		return a.fail(req.TaskID, fmt.Errorf("transcript is required"))
	}

	a.logger.Info("analyzing interview transcript",
		zap.String("candidate_name", req.CandidateName),
		zap.Int("transcript_length", len(req.Transcript)),
	)

	qas, err := a.model.ExtractQA(ctx, req.Transcript)
	if err != nil {
		return a.fail(req.TaskID, fmt.Errorf("extract questions and answers: %w", err))
	}
	if len(qas) == 0 {
		return a.fail(req.TaskID, fmt.Errorf("no question/answer pairs found in transcript"))
	}

	for i := range qas {
		summary, err := a.model.SummarizeAnswer(ctx, qas[i])
		if err != nil {
			a.logger.Warn("answer summary failed, using placeholder",
				zap.Int("question_number", qas[i].Number),
				zap.Error(err),
			)
			summary = heuristic.PlaceholderSummary()
		}
		qas[i].Summary = summary.Summary
		qas[i].KeyPoints = summary.KeyPoints
		qas[i].Quality = summary.Quality
		qas[i].Completeness = summary.Completeness
	}

	evaluation, err := a.model.Evaluate(ctx, req.CandidateName, req.Position, qas)
	if err != nil {
		a.logger.Warn("candidate evaluation failed, using neutral fallback",
			zap.String("candidate_name", req.CandidateName),
			zap.Error(err),
		)
		evaluation = heuristic.NeutralEvaluation(err.Error())
	}

	a.logger.Info("interview analysis completed",
		zap.String("candidate_name", req.CandidateName),
		zap.Int("question_count", len(qas)),
		zap.Int("overall_score", evaluation.OverallScore),
		zap.String("recommendation", evaluation.Recommendation),
	)

	if req.TaskID != "" {
		result := map[string]any{
			"candidate_name":    req.CandidateName,
			"position":          req.Position,
			"questions_answers": qas,
			"evaluation":        evaluation,
		}
		if err := a.store.Complete(req.TaskID, result); err != nil {
			a.logger.Error("failed to mark task completed", zap.Error(err))
		}
	}

	return nil
}

func (a *InterviewAnalyzer) fail(taskID string, err error) error {
	if taskID != "" {
		if failErr := a.store.Fail(taskID, err); failErr != nil {
			a.logger.Error("failed to mark task failed",
				zap.String("task_id", taskID),
				zap.Error(failErr),
			)
		}
	}
	return err
}
