package agent

import (
	"context"

	"github.com/odellis/hireflow/internal/ai"
	"github.com/odellis/hireflow/internal/logger"
	"go.uber.org/zap"
)

// Notification events flowing between roles.
const (
	EventCandidateResponseReceived = "candidate_response_received"
	EventAvailabilityRequestSent   = "availability_request_sent"
	EventInterviewScheduled        = "interview_scheduled"
)

// Scheduler owns the three-way branch on classified candidate responses.
// Acceptance with a usable slot flows to confirmation and interviewer prep;
// acceptance without one asks for a concrete time; everything else is an
// acknowledgment or a clarification request.
type Scheduler struct {
	dispatcher Dispatcher
	classifier ai.ReplyClassifier
	logger     *zap.Logger
}

func NewScheduler(dispatcher Dispatcher, classifier ai.ReplyClassifier, lg *zap.Logger) *Scheduler {
	return &Scheduler{dispatcher: dispatcher, classifier: classifier, logger: lg}
}

func (s *Scheduler) Role() RoleName { return RoleScheduler }

func (s *Scheduler) HandleMessage(ctx context.Context, msg *Message) error {
	if msg.Kind != KindNotification {
		return nil
	}

	switch payloadString(msg.Payload, "event") {
	case EventCandidateResponseReceived:
		return s.processCandidateResponse(ctx, msg.Payload)
	case EventAvailabilityRequestSent:
		s.logger.Info("availability request in flight",
			logger.CandidateFields(payloadString(msg.Payload, "candidate_email"), payloadString(msg.Payload, "thread_id"))...,
		)
		return nil
	default:
		return nil
	}
}

func (s *Scheduler) processCandidateResponse(ctx context.Context, payload map[string]any) error {
	candidateEmail := payloadString(payload, "candidate_email")

	assessment := assessmentFromPayload(payload)
	if assessment == nil {
		// The notification carried only raw text; classify it here.
		replyText := payloadString(payload, "email_content")
		var err error
		assessment, err = s.classifier.ClassifyReply(ctx, replyText)
		if err != nil {
			return err
		}
	}

	s.logger.Info("processing candidate response",
		zap.String(logger.FieldCandidate, candidateEmail),
		zap.String("response_type", string(assessment.ResponseType)),
		zap.Float64("confidence", assessment.Confidence),
	)

	switch assessment.ResponseType {
	case ai.ResponseAccept:
		s.handleAcceptance(candidateEmail, payload, assessment)
	case ai.ResponseReject:
		s.handleRejection(candidateEmail, assessment)
	default:
		s.handleUnclear(candidateEmail, assessment)
	}

	return nil
}

func (s *Scheduler) handleAcceptance(candidateEmail string, payload map[string]any, assessment *ai.ReplyAssessment) {
	if _, _, ok := assessment.FirstSlot(); !ok {
		// Accepted but no concrete slot: distinct from an unclear response.
		s.logger.Info("acceptance without usable slot",
			zap.String(logger.FieldCandidate, candidateEmail),
		)
		s.dispatcher.Dispatch(NewMessage(RoleScheduler, RoleRecruiter, KindTaskAssignment, map[string]any{
			"task_type":       TaskRequestAvailabilityClarification,
			"candidate_email": candidateEmail,
			"reason":          "Could not determine specific meeting time",
		}))
		return
	}

	s.logger.Info("candidate accepted interview",
		zap.String(logger.FieldCandidate, candidateEmail),
	)

	s.dispatcher.Dispatch(NewMessage(RoleScheduler, RoleRecruiter, KindTaskAssignment, map[string]any{
		"task_type":       TaskSendMeetingConfirmation,
		"candidate_email": candidateEmail,
		"position_title":  payloadString(payload, "position_title"),
		"assessment":      assessment,
		"response_type":   string(ai.ResponseAccept),
	}))

	s.dispatcher.Dispatch(NewMessage(RoleScheduler, RoleInterviewer, KindNotification, map[string]any{
		"event":           EventInterviewScheduled,
		"candidate_email": candidateEmail,
		"assessment":      assessment,
	}))
}

func (s *Scheduler) handleRejection(candidateEmail string, assessment *ai.ReplyAssessment) {
	reason := assessment.Reason
	if reason == "" {
		reason = "Candidate declined interview"
	}

	s.logger.Info("candidate rejected interview",
		zap.String(logger.FieldCandidate, candidateEmail),
		zap.String("reason", reason),
	)

	s.dispatcher.Dispatch(NewMessage(RoleScheduler, RoleRecruiter, KindTaskAssignment, map[string]any{
		"task_type":        TaskSendRejectionAcknowledgment,
		"candidate_email":  candidateEmail,
		"candidate_reason": reason,
		"response_type":    string(ai.ResponseReject),
	}))
}

func (s *Scheduler) handleUnclear(candidateEmail string, assessment *ai.ReplyAssessment) {
	s.logger.Warn("candidate response unclear, manual review needed",
		zap.String(logger.FieldCandidate, candidateEmail),
		zap.String("reason", assessment.Reason),
	)

	s.dispatcher.Dispatch(NewMessage(RoleScheduler, RoleRecruiter, KindTaskAssignment, map[string]any{
		"task_type":        TaskRequestClarification,
		"candidate_email":  candidateEmail,
		"original_message": assessment.CandidateMessage,
		"response_type":    string(ai.ResponseUnclear),
	}))
}
