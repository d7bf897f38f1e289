package agent

import (
	"context"

	"github.com/odellis/hireflow/internal/logger"
	"go.uber.org/zap"
)

// Interviewer reacts to scheduled interviews by requesting CV analysis. The
// request is fire-and-forget; correlation happens through the task store,
// not by blocking on a reply.
type Interviewer struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

func NewInterviewer(dispatcher Dispatcher, lg *zap.Logger) *Interviewer {
	return &Interviewer{dispatcher: dispatcher, logger: lg}
}

func (i *Interviewer) Role() RoleName { return RoleInterviewer }

func (i *Interviewer) HandleMessage(_ context.Context, msg *Message) error {
	if msg.Kind != KindNotification || payloadString(msg.Payload, "event") != EventInterviewScheduled {
		return nil
	}

	candidateEmail := payloadString(msg.Payload, "candidate_email")
	i.logger.Info("preparing interview questions",
		zap.String(logger.FieldCandidate, candidateEmail),
	)

	request := NewMessage(RoleInterviewer, RoleCVAnalyzer, KindRequest, map[string]any{
		"action":          ActionAnalyzeCV,
		"candidate_email": candidateEmail,
	})
	request.RequiresResponse = true
	i.dispatcher.Dispatch(request)

	return nil
}
