package gemini

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/odellis/hireflow/internal/ai"
	"github.com/odellis/hireflow/internal/logger"
	"go.uber.org/zap"
)

//go:embed reply_prompt.md
var replyPromptTemplate string

//go:embed detect_prompt.md
var detectPromptTemplate string

const defaultMaxLogLength = 200

// Classifier turns candidate reply text into a structured assessment. It
// never fails outright: anything the model cannot handle comes back as an
// unclear assessment with zero confidence.
type Classifier struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewClassifier(generator contentGenerator, lg *zap.Logger, maxLogLength int) *Classifier {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if lg == nil {
		lg = zap.NewNop()
	}

	return &Classifier{
		generator: generator,
		logger:    lg,
		maxLogLen: maxLogLength,
	}
}

func (c *Classifier) ClassifyReply(ctx context.Context, replyText string) (*ai.ReplyAssessment, error) {
	replyText = strings.TrimSpace(replyText)
	if replyText == "" {
		return ai.Unclear("empty reply text"), nil
	}

	prompt := strings.ReplaceAll(replyPromptTemplate, "{{REPLY_TEXT}}", replyText)

	c.logger.Debug("gemini classify reply request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("reply classification failed, treating as unclear", zap.Error(err))
		return ai.Unclear(fmt.Sprintf("classification error: %v", err)), nil
	}

	c.logger.Debug("gemini classify reply response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, c.maxLogLen)),
	)

	assessment, err := parseReplyAssessment(raw)
	if err != nil {
		c.logger.Warn("reply classification returned unparseable output", zap.Error(err))
		return ai.Unclear(fmt.Sprintf("parse error: %v", err)), nil
	}

	assessment.Raw = raw
	return assessment, nil
}

func parseReplyAssessment(raw string) (*ai.ReplyAssessment, error) {
	var data map[string]any
	if err := decodeObject(raw, &data); err != nil {
		return nil, err
	}

	responseType := ai.ResponseType(strings.ToLower(coerceString(data["response_type"])))
	switch responseType {
	case ai.ResponseAccept, ai.ResponseReject, ai.ResponseUnclear:
	default:
		responseType = ai.ResponseUnclear
	}

	confidence := coerceFloat(data["confidence"])
	if math.IsNaN(confidence) || confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	timezone := coerceString(data["timezone"])
	if timezone == "" {
		timezone = "UTC"
	}

	return &ai.ReplyAssessment{
		ResponseType:     responseType,
		PreferredDates:   coerceStrings(data["preferred_dates"]),
		PreferredTimes:   coerceStrings(data["preferred_times"]),
		Timezone:         timezone,
		Constraints:      coerceStrings(data["constraints"]),
		Confidence:       confidence,
		Reason:           coerceString(data["reason"]),
		CandidateMessage: coerceString(data["candidate_message"]),
	}, nil
}

// Detector is the model-backed pre-filter deciding whether an unread email
// looks like a candidate responding to a scheduling request.
type Detector struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewDetector(generator contentGenerator, lg *zap.Logger, maxLogLength int) *Detector {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if lg == nil {
		lg = zap.NewNop()
	}

	return &Detector{
		generator: generator,
		logger:    lg,
		maxLogLen: maxLogLength,
	}
}

func (d *Detector) DetectResponse(ctx context.Context, subject, body string) (*ai.Detection, error) {
	prompt := strings.ReplaceAll(detectPromptTemplate, "{{SUBJECT}}", strings.TrimSpace(subject))
	prompt = strings.ReplaceAll(prompt, "{{BODY}}", strings.TrimSpace(body))

	raw, err := d.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("detect candidate response: %w", err)
	}

	d.logger.Debug("gemini detect response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, d.maxLogLen)),
	)

	var data map[string]any
	if err := decodeObject(raw, &data); err != nil {
		return nil, err
	}

	confidence := coerceFloat(data["confidence"])
	if math.IsNaN(confidence) {
		confidence = 0
	}

	return &ai.Detection{
		IsCandidateResponse:  coerceBool(data["is_candidate_response"]),
		Confidence:           confidence,
		Reason:               coerceString(data["reason"]),
		ContainsAvailability: coerceBool(data["contains_availability"]),
	}, nil
}
