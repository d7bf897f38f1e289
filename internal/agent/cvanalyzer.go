package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/odellis/hireflow/internal/ai"
	"github.com/odellis/hireflow/internal/logger"
	"github.com/odellis/hireflow/internal/mailbox"
	"go.uber.org/zap"
)

const (
	ActionAnalyzeCV = "analyze_cv"
	TaskAnalyzeCV   = "analyze_cv"
)

// CVAnalyzer turns CV text into a screening guide. The model-backed analyzer
// runs first; any failure degrades to the deterministic fallback so the task
// always terminates. Finished analyses fan out as email: the guide goes to
// HR, an availability request goes to the candidate.
type CVAnalyzer struct {
	dispatcher Dispatcher
	mail       mailbox.Mailbox
	store      *Store
	model      ai.CVAnalyzer
	fallback   ai.CVAnalyzer
	hrEmail    string
	logger     *zap.Logger
}

func NewCVAnalyzer(dispatcher Dispatcher, mail mailbox.Mailbox, store *Store, model, fallback ai.CVAnalyzer, hrEmail string, lg *zap.Logger) *CVAnalyzer {
	return &CVAnalyzer{
		dispatcher: dispatcher,
		mail:       mail,
		store:      store,
		model:      model,
		fallback:   fallback,
		hrEmail:    hrEmail,
		logger:     lg,
	}
}

func (c *CVAnalyzer) Role() RoleName { return RoleCVAnalyzer }

func (c *CVAnalyzer) HandleMessage(ctx context.Context, msg *Message) error {
	switch {
	case msg.Kind == KindRequest && payloadString(msg.Payload, "action") == ActionAnalyzeCV:
		return c.respondToRequest(ctx, msg)
	case msg.Kind == KindTaskAssignment && payloadString(msg.Payload, "task_type") == TaskAnalyzeCV:
		return c.analyzeFromTask(ctx, msg.Payload)
	default:
		return nil
	}
}

// respondToRequest serves the interviewer's prep request. No CV text is
// attached to these, so the fallback analyzer answers from the candidate
// identity alone.
func (c *CVAnalyzer) respondToRequest(ctx context.Context, msg *Message) error {
	candidateEmail := payloadString(msg.Payload, "candidate_email")

	c.logger.Info("analyzing candidate for interview prep",
		zap.String(logger.FieldCandidate, candidateEmail),
	)

	analysis, err := c.fallback.AnalyzeCV(ctx, mailbox.ExtractName(candidateEmail), "", "")
	if err != nil {
		return err
	}
	analysis.CandidateEmail = candidateEmail

	c.dispatcher.Dispatch(NewMessage(RoleCVAnalyzer, msg.From, KindResponse, map[string]any{
		"analysis":            analysis,
		"original_request_id": msg.ID,
	}))

	return nil
}

type analyzeCVPayload struct {
	TaskID         string `mapstructure:"task_id"`
	CandidateEmail string `mapstructure:"candidate_email"`
	CVText         string `mapstructure:"cv_text"`
	JobDescription string `mapstructure:"job_description"`
	PositionTitle  string `mapstructure:"position_title"`
}

func (c *CVAnalyzer) analyzeFromTask(ctx context.Context, payload map[string]any) error {
	var req analyzeCVPayload
	if err := decodePayload(payload, &req); err != nil {
		return err
	}
	if req.PositionTitle == "" {
		req.PositionTitle = defaultPosition
	}

	if req.CandidateEmail == "" {
		err := fmt.Errorf("candidate email is required")
		if req.TaskID != "" {
			if failErr := c.store.Fail(req.TaskID, err); failErr != nil {
				c.logger.Error("failed to mark task failed", zap.Error(failErr))
			}
		}
		return err
	}

	candidateName := mailbox.ExtractName(req.CandidateEmail)

	c.logger.Info("analyzing cv",
		zap.String(logger.FieldCandidate, req.CandidateEmail),
		zap.Int("cv_length", len(req.CVText)),
	)

	analysis := c.runAnalysis(ctx, candidateName, req)
	analysis.CandidateEmail = req.CandidateEmail

	c.logger.Info("cv analysis completed",
		zap.String(logger.FieldCandidate, req.CandidateEmail),
		zap.Int("match_score", analysis.MatchScore),
	)

	c.sendGuideToHR(ctx, analysis, req.PositionTitle)
	c.sendAvailabilityRequest(ctx, analysis, req.PositionTitle)

	if req.TaskID != "" {
		result := map[string]any{
			"candidate_name":   analysis.CandidateName,
			"candidate_email":  analysis.CandidateEmail,
			"key_skills":       analysis.KeySkills,
			"experience_years": analysis.ExperienceYears,
			"match_score":      analysis.MatchScore,
			"summary":          analysis.Summary,
			"question_count":   len(analysis.Questions),
		}
		if err := c.store.Complete(req.TaskID, result); err != nil {
			c.logger.Error("failed to mark task completed", zap.Error(err))
		}
	}

	return nil
}

func (c *CVAnalyzer) runAnalysis(ctx context.Context, candidateName string, req analyzeCVPayload) *ai.CVAnalysis {
	if strings.TrimSpace(req.CVText) != "" && c.model != nil {
		analysis, err := c.model.AnalyzeCV(ctx, candidateName, req.CVText, req.JobDescription)
		if err == nil {
			return analysis
		}
		c.logger.Warn("model cv analysis failed, using fallback",
			zap.String(logger.FieldCandidate, req.CandidateEmail),
			zap.Error(err),
		)
	}

	analysis, err := c.fallback.AnalyzeCV(ctx, candidateName, req.CVText, req.JobDescription)
	if err != nil {
		// The deterministic path cannot fail in practice; keep the task
		// moving with an empty-CV analysis regardless.
		analysis, _ = c.fallback.AnalyzeCV(ctx, candidateName, "", "")
	}
	return analysis
}

func (c *CVAnalyzer) sendGuideToHR(ctx context.Context, analysis *ai.CVAnalysis, position string) {
	if c.hrEmail == "" {
		return
	}

	var questions strings.Builder
	for i, q := range analysis.Questions {
		fmt.Fprintf(&questions, `<div style="margin-bottom: 20px;">
<h4>%d. %s</h4>
<p><strong>Purpose:</strong> %s</p>
<p><strong>Follow-up hints:</strong> %s</p>
</div>
`, i+1, q.Question, q.Purpose, q.FollowUpHints)
	}

	body := fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6;">
<h1>Candidate Analysis &amp; Interview Guide</h1>
<h2>Candidate Review</h2>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Position:</strong> %s</p>
<p><strong>Years of Experience:</strong> %d</p>
<p><strong>Education:</strong> %s</p>
<p><strong>Technical Skills:</strong> %s</p>
<p><strong>Match Score:</strong> %d%%</p>
<p><strong>Summary:</strong> %s</p>
<h2>Interview Questions (%d questions - %s)</h2>
%s
<h2>Focus Areas</h2>
<p>%s</p>
<hr>
<p style="font-size: 12px; color: #7f8c8d;">This interview guide was generated automatically by the recruitment system.</p>
</body>
</html>`,
		analysis.CandidateName,
		analysis.CandidateEmail,
		position,
		analysis.ExperienceYears,
		orDefault(analysis.Education, "Not provided"),
		orDefault(strings.Join(analysis.KeySkills, ", "), "Various technologies"),
		analysis.MatchScore,
		orDefault(analysis.Summary, "No summary provided"),
		len(analysis.Questions),
		orDefault(analysis.EstimatedDuration, "30 minutes"),
		questions.String(),
		strings.Join(analysis.FocusAreas, ", "),
	)

	subject := fmt.Sprintf("Interview Questions Ready: %s - %s", analysis.CandidateName, position)

	if _, _, err := c.mail.Send(ctx, c.hrEmail, subject, body, true); err != nil {
		c.logger.Error("failed to send interview guide to hr",
			zap.String(logger.FieldCandidate, analysis.CandidateEmail),
			zap.Error(err),
		)
		return
	}

	c.logger.Info("interview guide sent to hr",
		zap.String(logger.FieldCandidate, analysis.CandidateEmail),
	)
}

// sendAvailabilityRequest emails the candidate after analysis and registers
// the resulting thread with the email monitor.
func (c *CVAnalyzer) sendAvailabilityRequest(ctx context.Context, analysis *ai.CVAnalysis, position string) {
	body := fmt.Sprintf(`Dear %s,

Thank you for your interest in the %s position with our company.

We have reviewed your CV and would like to schedule an interview with you to discuss your qualifications and learn more about your experience.

Please reply to this email with 2-3 time slots when you would be available for a 30-minute screening interview in the next 5 business days. We are flexible with timing and can accommodate your schedule.

We look forward to hearing from you soon.

Best regards,
HR Team`, analysis.CandidateName, position)

	subject := fmt.Sprintf("Interview Invitation - %s Position", position)

	messageID, threadID, err := c.mail.Send(ctx, analysis.CandidateEmail, subject, body, false)
	if err != nil {
		c.logger.Error("failed to send availability request",
			zap.String(logger.FieldCandidate, analysis.CandidateEmail),
			zap.Error(err),
		)
		return
	}

	if threadID == "" {
		c.logger.Warn("no thread id returned, cannot watch for replies",
			zap.String(logger.FieldCandidate, analysis.CandidateEmail),
		)
		return
	}

	c.dispatcher.Dispatch(NewMessage(RoleCVAnalyzer, RoleEmailMonitor, KindTaskAssignment, map[string]any{
		"task_type":       TaskMonitorCandidateReply,
		"candidate_email": analysis.CandidateEmail,
		"thread_id":       threadID,
		"message_id":      messageID,
	}))
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
