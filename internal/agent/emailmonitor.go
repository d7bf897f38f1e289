package agent

import (
	"context"
	"sync"
	"time"

	"github.com/odellis/hireflow/internal/ai"
	"github.com/odellis/hireflow/internal/logger"
	"github.com/odellis/hireflow/internal/mailbox"
	"github.com/odellis/hireflow/internal/poller"
	"go.uber.org/zap"
)

const (
	TaskMonitorCandidateReply = "monitor_candidate_reply"

	defaultWatchInterval = 60 * time.Second
)

// EmailMonitor keeps the reply-watch registry: threads where an availability
// request went out and a candidate reply is awaited. A background poller
// checks each watched thread; the first reply found removes the entry, so a
// thread is processed at most once per registration.
type EmailMonitor struct {
	dispatcher Dispatcher
	mail       mailbox.Mailbox
	classifier ai.ReplyClassifier
	logger     *zap.Logger

	mu      sync.Mutex
	watched map[string]string // thread id -> candidate email

	poller *poller.Poller
}

func NewEmailMonitor(dispatcher Dispatcher, mail mailbox.Mailbox, classifier ai.ReplyClassifier, interval time.Duration, lg *zap.Logger) *EmailMonitor {
	if interval <= 0 {
		interval = defaultWatchInterval
	}

	m := &EmailMonitor{
		dispatcher: dispatcher,
		mail:       mail,
		classifier: classifier,
		logger:     lg,
		watched:    make(map[string]string),
	}
	m.poller = poller.New("reply_watch", interval, m.checkWatchedThreads, lg)

	return m
}

func (m *EmailMonitor) Role() RoleName { return RoleEmailMonitor }

func (m *EmailMonitor) HandleMessage(_ context.Context, msg *Message) error {
	if msg.Kind != KindTaskAssignment || payloadString(msg.Payload, "task_type") != TaskMonitorCandidateReply {
		return nil
	}

	threadID := payloadString(msg.Payload, "thread_id")
	candidateEmail := payloadString(msg.Payload, "candidate_email")

	if threadID == "" || candidateEmail == "" {
		m.logger.Error("cannot watch thread, missing identifiers",
			zap.String(logger.FieldThread, threadID),
			zap.String(logger.FieldCandidate, candidateEmail),
		)
		return nil
	}

	m.mu.Lock()
	m.watched[threadID] = candidateEmail
	total := len(m.watched)
	m.mu.Unlock()

	m.logger.Info("watching thread for replies",
		zap.String(logger.FieldThread, threadID),
		zap.String(logger.FieldCandidate, candidateEmail),
		zap.Int("watched_threads", total),
	)

	return nil
}

// StartWatching launches the thread polling loop. Idempotent.
func (m *EmailMonitor) StartWatching(ctx context.Context) {
	m.poller.Start(ctx)
}

// StopWatching halts the polling loop. Idempotent.
func (m *EmailMonitor) StopWatching() {
	m.poller.Stop()
}

// Watching reports whether the polling loop is running.
func (m *EmailMonitor) Watching() bool {
	return m.poller.Running()
}

// WatchedThreads returns a snapshot of the registry.
func (m *EmailMonitor) WatchedThreads() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]string, len(m.watched))
	for thread, email := range m.watched {
		snapshot[thread] = email
	}
	return snapshot
}

func (m *EmailMonitor) checkWatchedThreads(ctx context.Context) error {
	snapshot := m.WatchedThreads()
	if len(snapshot) == 0 {
		m.logger.Debug("no threads being watched")
		return nil
	}

	m.logger.Info("checking watched threads", zap.Int("count", len(snapshot)))

	for threadID, candidateEmail := range snapshot {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		reply, err := m.mail.LatestReplyInThread(ctx, threadID, candidateEmail)
		if err != nil {
			m.logger.Error("failed to check thread",
				zap.String(logger.FieldThread, threadID),
				zap.Error(err),
			)
			continue
		}

		if reply == "" {
			m.logger.Debug("no reply yet",
				zap.String(logger.FieldThread, threadID),
				zap.String(logger.FieldCandidate, candidateEmail),
			)
			continue
		}

		m.processReply(ctx, threadID, candidateEmail, reply)
	}

	return nil
}

func (m *EmailMonitor) processReply(ctx context.Context, threadID, candidateEmail, reply string) {
	m.logger.Info("found candidate reply",
		zap.String(logger.FieldThread, threadID),
		zap.String(logger.FieldCandidate, candidateEmail),
		zap.String("preview", logger.TruncateForLog(reply, 100)),
	)

	assessment, err := m.classifier.ClassifyReply(ctx, reply)
	if err != nil {
		// Only context cancellation surfaces here; everything else comes
		// back as an unclear assessment.
		m.logger.Error("classification aborted", zap.Error(err))
		return
	}

	m.dispatcher.Dispatch(NewMessage(RoleEmailMonitor, RoleScheduler, KindNotification, map[string]any{
		"event":           EventCandidateResponseReceived,
		"candidate_email": candidateEmail,
		"email_content":   reply,
		"assessment":      assessment,
		"thread_id":       threadID,
	}))

	// Remove before the scheduler acts, so a second poll cycle seeing the
	// same reply cannot trigger a duplicate notification.
	m.mu.Lock()
	delete(m.watched, threadID)
	m.mu.Unlock()

	m.logger.Info("thread removed from watch after reply",
		zap.String(logger.FieldThread, threadID),
	)
}

// InjectReply feeds a synthetic reply through the same path a polled reply
// takes, without touching the mailbox. Used by the simulation endpoint.
func (m *EmailMonitor) InjectReply(ctx context.Context, candidateEmail, replyText string) {
	m.processReply(ctx, "simulated", candidateEmail, replyText)
}
