package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/odellis/hireflow/internal/logger"
	"github.com/odellis/hireflow/internal/mailbox"
	"github.com/odellis/hireflow/internal/meet"
	"go.uber.org/zap"
)

// Task types handled by the recruiter.
const (
	TaskSendAvailabilityRequest          = "send_availability_request"
	TaskSendMeetingConfirmation          = "send_meeting_confirmation"
	TaskSendRejectionAcknowledgment      = "send_rejection_acknowledgment"
	TaskRequestClarification             = "request_clarification"
	TaskRequestAvailabilityClarification = "request_availability_clarification"
)

const defaultPosition = "Software Engineer"

// Recruiter composes and sends all candidate-facing email. Every send is
// fire-and-forget; a mailbox failure is logged and the pipeline moves on.
type Recruiter struct {
	dispatcher Dispatcher
	mail       mailbox.Mailbox
	logger     *zap.Logger
}

func NewRecruiter(dispatcher Dispatcher, mail mailbox.Mailbox, lg *zap.Logger) *Recruiter {
	return &Recruiter{dispatcher: dispatcher, mail: mail, logger: lg}
}

func (r *Recruiter) Role() RoleName { return RoleRecruiter }

func (r *Recruiter) HandleMessage(ctx context.Context, msg *Message) error {
	if msg.Kind != KindTaskAssignment {
		return nil
	}

	switch payloadString(msg.Payload, "task_type") {
	case TaskSendAvailabilityRequest:
		return r.sendAvailabilityRequest(ctx, msg.Payload)
	case TaskSendMeetingConfirmation:
		return r.sendMeetingConfirmation(ctx, msg.Payload)
	case TaskSendRejectionAcknowledgment:
		return r.sendRejectionAcknowledgment(ctx, msg.Payload)
	case TaskRequestClarification:
		return r.sendClarificationRequest(ctx, msg.Payload)
	case TaskRequestAvailabilityClarification:
		return r.sendAvailabilityClarification(ctx, msg.Payload)
	default:
		return nil
	}
}

type availabilityRequestPayload struct {
	CandidateEmail string `mapstructure:"candidate_email"`
	CandidateName  string `mapstructure:"candidate_name"`
	PositionTitle  string `mapstructure:"position_title"`
}

func (r *Recruiter) sendAvailabilityRequest(ctx context.Context, payload map[string]any) error {
	var req availabilityRequestPayload
	if err := decodePayload(payload, &req); err != nil {
		return err
	}
	if req.PositionTitle == "" {
		req.PositionTitle = defaultPosition
	}
	if req.CandidateName == "" {
		req.CandidateName = mailbox.ExtractName(req.CandidateEmail)
	}

	r.logger.Info("sending availability request", logger.CandidateFields(req.CandidateEmail, "")...)

	subject := fmt.Sprintf("Interview Invitation - %s Position", req.PositionTitle)
	body := fmt.Sprintf(`Dear %s,

Thank you for your interest in the %s position with our company.

We would like to schedule an interview with you to discuss your qualifications and learn more about your experience.

Please reply to this email with your availability for the next week. We are flexible with timing and can accommodate your schedule.

Some suggested time slots:
- Monday-Friday: 9:00 AM - 5:00 PM (UTC)
- Duration: 45-60 minutes
- Format: Video call (Google Meet link will be provided upon confirmation)

Please let us know:
1. Your preferred dates and times
2. Your timezone
3. Any scheduling constraints we should be aware of

We look forward to speaking with you!

Best regards,
HR Team

---
This email was sent automatically by our recruitment system. Please reply to schedule your interview.`,
		req.CandidateName, req.PositionTitle)

	messageID, threadID, err := r.mail.Send(ctx, req.CandidateEmail, subject, body, false)
	if err != nil {
		r.logger.Error("failed to send availability request",
			zap.String(logger.FieldCandidate, req.CandidateEmail),
			zap.Error(err),
		)
		return nil
	}

	r.logger.Info("availability request sent",
		logger.CandidateFields(req.CandidateEmail, threadID)...,
	)

	r.dispatcher.Dispatch(NewMessage(RoleRecruiter, RoleScheduler, KindNotification, map[string]any{
		"event":           EventAvailabilityRequestSent,
		"candidate_email": req.CandidateEmail,
		"candidate_name":  req.CandidateName,
		"thread_id":       threadID,
		"message_id":      messageID,
	}))

	r.dispatcher.Dispatch(NewMessage(RoleRecruiter, RoleEmailMonitor, KindTaskAssignment, map[string]any{
		"task_type":       TaskMonitorCandidateReply,
		"candidate_email": req.CandidateEmail,
		"thread_id":       threadID,
		"message_id":      messageID,
	}))

	return nil
}

type confirmationPayload struct {
	CandidateEmail string `mapstructure:"candidate_email"`
	PositionTitle  string `mapstructure:"position_title"`
}

func (r *Recruiter) sendMeetingConfirmation(ctx context.Context, payload map[string]any) error {
	var req confirmationPayload
	if err := decodePayload(payload, &req); err != nil {
		return err
	}
	if req.PositionTitle == "" {
		req.PositionTitle = defaultPosition
	}

	candidateName := mailbox.ExtractName(req.CandidateEmail)

	// Pick the slot from the classified availability; first option wins.
	assessment := assessmentFromPayload(payload)
	timezone := "UTC"
	var start time.Time
	if assessment != nil {
		if assessment.Timezone != "" {
			timezone = assessment.Timezone
		}
		date, clock, ok := assessment.FirstSlot()
		if ok {
			start = meet.ParseInterviewTime(date, clock)
		}
	}
	if start.IsZero() {
		start = time.Now().UTC().Add(24 * time.Hour)
	}

	event := meet.NewEvent(candidateName, req.PositionTitle, start, 45*time.Minute)
	calendarLink := meet.CalendarLink(event)

	interviewDate := start.Format("Monday, January 2, 2006")
	interviewTime := start.Format("3:04 PM")

	subject := fmt.Sprintf("Interview Confirmed - %s at %s", interviewDate, interviewTime)
	body := fmt.Sprintf(`Dear %s,

Great news! Your interview has been confirmed for the %s position.

Interview Details:
- Date: %s
- Time: %s %s
- Duration: 45 minutes
- Format: Video call via Google Meet

Join the Meeting:
%s

Add to Calendar:
%s

Interview Agenda:
1. Introduction and background (10 minutes)
2. Technical discussion and experience review (25 minutes)
3. Questions from you about the role and company (10 minutes)

Before the Interview:
- Please join the meeting 2-3 minutes early to test your connection
- Ensure you have a stable internet connection and quiet environment
- Have your resume and any questions ready

If you need to reschedule or have any questions, please reply to this email as soon as possible.

We look forward to speaking with you!

Best regards,
HR Team`,
		candidateName, req.PositionTitle, interviewDate, interviewTime, timezone,
		event.MeetURL, calendarLink)

	if _, _, err := r.mail.Send(ctx, req.CandidateEmail, subject, body, false); err != nil {
		r.logger.Error("failed to send meeting confirmation",
			zap.String(logger.FieldCandidate, req.CandidateEmail),
			zap.Error(err),
		)
		return nil
	}

	r.logger.Info("meeting confirmation sent",
		zap.String(logger.FieldCandidate, req.CandidateEmail),
		zap.String("meet_url", event.MeetURL),
		zap.Time("interview_at", start),
	)

	return nil
}

func (r *Recruiter) sendRejectionAcknowledgment(ctx context.Context, payload map[string]any) error {
	candidateEmail := payloadString(payload, "candidate_email")
	candidateName := mailbox.ExtractName(candidateEmail)

	r.logger.Info("sending rejection acknowledgment", logger.CandidateFields(candidateEmail, "")...)

	body := fmt.Sprintf(`Dear %s,

Thank you for getting back to us regarding the interview opportunity.

We completely understand your decision and appreciate you taking the time to let us know. We respect your choice and wish you all the best in your job search and career journey.

If your circumstances change in the future, please don't hesitate to reach out. We would be happy to consider your application for other suitable positions that may arise.

Thank you again for your interest in our company, and we wish you continued success.

Best regards,
HR Team

---
This is an automated response from our recruitment system.`, candidateName)

	if _, _, err := r.mail.Send(ctx, candidateEmail, "Thank you for your response", body, false); err != nil {
		r.logger.Error("failed to send rejection acknowledgment",
			zap.String(logger.FieldCandidate, candidateEmail),
			zap.Error(err),
		)
	}

	return nil
}

func (r *Recruiter) sendClarificationRequest(ctx context.Context, payload map[string]any) error {
	candidateEmail := payloadString(payload, "candidate_email")
	candidateName := mailbox.ExtractName(candidateEmail)

	r.logger.Info("sending clarification request", logger.CandidateFields(candidateEmail, "")...)

	body := fmt.Sprintf(`Dear %s,

Thank you for your response to our interview invitation.

We want to make sure we schedule the interview at a time that works best for you, but we need a bit more clarity on your availability.

Could you please let us know:
- Your preferred date(s) for the interview
- Your preferred time(s)
- Your timezone

For example: "I'm available on Monday, August 26th at 2:00 PM EST" or "I'm free Tuesday or Wednesday afternoon after 1:00 PM PST"

We're flexible and want to accommodate your schedule. The interview will take approximately 45 minutes and will be conducted via Google Meet.

Please reply with your specific availability, and we'll send you a meeting confirmation with all the details.

Thank you for your patience!

Best regards,
HR Team`, candidateName)

	if _, _, err := r.mail.Send(ctx, candidateEmail, "Interview Scheduling - Could you please clarify?", body, false); err != nil {
		r.logger.Error("failed to send clarification request",
			zap.String(logger.FieldCandidate, candidateEmail),
			zap.Error(err),
		)
	}

	return nil
}

func (r *Recruiter) sendAvailabilityClarification(ctx context.Context, payload map[string]any) error {
	candidateEmail := payloadString(payload, "candidate_email")
	candidateName := mailbox.ExtractName(candidateEmail)

	r.logger.Info("sending availability clarification", logger.CandidateFields(candidateEmail, "")...)

	body := fmt.Sprintf(`Dear %s,

Thank you for accepting our interview invitation!

To schedule the meeting, we need you to specify your exact preferred date and time. Could you please reply with:

- Specific date (e.g., "Monday, August 26th, 2025")
- Specific time (e.g., "2:00 PM" or "14:00")
- Your timezone (e.g., "UTC", "EST", "PST")

For example: "I'm available on Monday, August 26th at 2:00 PM EST"

Once we receive your specific availability, we'll immediately send you:
- Google Meet link for the interview
- Calendar invitation
- Interview agenda and preparation tips

The interview will take approximately 45 minutes.

We look forward to hearing from you!

Best regards,
HR Team`, candidateName)

	if _, _, err := r.mail.Send(ctx, candidateEmail, "Interview Scheduling - Please specify your preferred time", body, false); err != nil {
		r.logger.Error("failed to send availability clarification",
			zap.String(logger.FieldCandidate, candidateEmail),
			zap.Error(err),
		)
	}

	return nil
}
