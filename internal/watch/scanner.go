// Package watch implements the standalone mailbox scanner: a poller that
// sweeps all unread mail, filters for candidate responses, and schedules
// meetings directly from parsed availability.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/odellis/hireflow/internal/ai"
	"github.com/odellis/hireflow/internal/logger"
	"github.com/odellis/hireflow/internal/mailbox"
	"github.com/odellis/hireflow/internal/meet"
	"github.com/odellis/hireflow/internal/poller"
	"go.uber.org/zap"
)

const (
	defaultInterval    = 30 * time.Second
	unreadBatchSize    = 20
	detectionThreshold = 0.7
)

// Stats counts scanner activity since process start.
type Stats struct {
	TotalChecks         int       `json:"total_checks"`
	SuccessfulSchedules int       `json:"successful_schedules"`
	FailedSchedules     int       `json:"failed_schedules"`
	ProcessedMessages   int       `json:"processed_messages"`
	LastCheckTime       time.Time `json:"last_check_time"`
}

// Scanner polls the whole mailbox for unread candidate responses. Unlike
// the per-thread reply watcher it has no registry: every unread message is
// run through a detection pre-filter before full availability parsing.
// Processed message ids are remembered for the process lifetime so each
// message schedules at most once.
type Scanner struct {
	mail       mailbox.Mailbox
	detector   ai.ResponseDetector
	fallback   ai.ResponseDetector
	classifier ai.ReplyClassifier
	logger     *zap.Logger

	mu        sync.Mutex
	processed map[string]struct{}
	stats     Stats

	poller *poller.Poller
}

// Config wires a Scanner. Fallback handles detection when the model-backed
// detector errors; Interval defaults when non-positive.
type Config struct {
	Mailbox    mailbox.Mailbox
	Detector   ai.ResponseDetector
	Fallback   ai.ResponseDetector
	Classifier ai.ReplyClassifier
	Interval   time.Duration
	Logger     *zap.Logger
}

func NewScanner(cfg Config) *Scanner {
	lg := cfg.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	s := &Scanner{
		mail:       cfg.Mailbox,
		detector:   cfg.Detector,
		fallback:   cfg.Fallback,
		classifier: cfg.Classifier,
		logger:     lg,
		processed:  make(map[string]struct{}),
	}
	s.poller = poller.New("mailbox_scan", interval, s.checkForResponses, lg)

	return s
}

// Start launches the scan loop. Idempotent.
func (s *Scanner) Start(ctx context.Context) {
	s.poller.Start(ctx)
}

// Stop halts the scan loop. Idempotent.
func (s *Scanner) Stop() {
	s.poller.Stop()
}

// Running reports whether the scan loop is live.
func (s *Scanner) Running() bool {
	return s.poller.Running()
}

// Snapshot returns current counters.
func (s *Scanner) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats
	stats.ProcessedMessages = len(s.processed)
	return stats
}

func (s *Scanner) checkForResponses(ctx context.Context) error {
	s.mu.Lock()
	s.stats.TotalChecks++
	s.stats.LastCheckTime = time.Now().UTC()
	s.mu.Unlock()

	ids, err := s.mail.ListUnread(ctx, "", unreadBatchSize)
	if err != nil {
		return fmt.Errorf("list unread: %w", err)
	}
	if len(ids) == 0 {
		s.logger.Debug("no unread messages")
		return nil
	}

	s.logger.Info("scanning unread messages", zap.Int("count", len(ids)))

	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.alreadyProcessed(id) {
			continue
		}
		s.processMessage(ctx, id)
	}

	return nil
}

func (s *Scanner) alreadyProcessed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processed[id]
	return ok
}

func (s *Scanner) markProcessed(id string) {
	s.mu.Lock()
	s.processed[id] = struct{}{}
	s.mu.Unlock()
}

func (s *Scanner) processMessage(ctx context.Context, id string) {
	email, err := s.mail.Read(ctx, id)
	if err != nil {
		s.logger.Error("failed to read message", zap.String("message_id", id), zap.Error(err))
		return
	}

	detection := s.detect(ctx, email.Subject, email.Body)
	if !detection.IsCandidateResponse || detection.Confidence < detectionThreshold {
		s.logger.Debug("not a candidate response",
			zap.String("message_id", id),
			zap.Float64("confidence", detection.Confidence),
		)
		return
	}

	candidateEmail := mailbox.ExtractAddress(email.From)
	s.logger.Info("candidate response detected",
		zap.String(logger.FieldCandidate, candidateEmail),
		zap.String("subject", logger.TruncateForLog(email.Subject, 80)),
		zap.Float64("confidence", detection.Confidence),
	)

	assessment, err := s.classifier.ClassifyReply(ctx, email.Body)
	if err != nil {
		s.logger.Error("classification aborted", zap.Error(err))
		return
	}

	scheduled := s.scheduleFromAssessment(ctx, email, candidateEmail, assessment)

	s.mu.Lock()
	if scheduled {
		s.stats.SuccessfulSchedules++
	} else {
		s.stats.FailedSchedules++
	}
	s.mu.Unlock()

	if err := s.mail.MarkRead(ctx, id); err != nil {
		s.logger.Error("failed to mark message read", zap.String("message_id", id), zap.Error(err))
	}
	s.markProcessed(id)
}

// detect runs the model-backed pre-filter and falls back to keyword
// matching when the model errors.
func (s *Scanner) detect(ctx context.Context, subject, body string) *ai.Detection {
	detection, err := s.detector.DetectResponse(ctx, subject, body)
	if err == nil {
		return detection
	}

	s.logger.Warn("model detection failed, using keyword fallback", zap.Error(err))

	detection, err = s.fallback.DetectResponse(ctx, subject, body)
	if err != nil {
		return &ai.Detection{}
	}
	return detection
}

func (s *Scanner) scheduleFromAssessment(ctx context.Context, email *mailbox.Email, candidateEmail string, assessment *ai.ReplyAssessment) bool {
	if assessment.ResponseType != ai.ResponseAccept {
		s.logger.Info("response does not accept an interview",
			zap.String(logger.FieldCandidate, candidateEmail),
			zap.String("response_type", string(assessment.ResponseType)),
		)
		return false
	}

	date, clock, ok := assessment.FirstSlot()
	if !ok {
		s.logger.Info("acceptance without usable slot",
			zap.String(logger.FieldCandidate, candidateEmail),
		)
		return false
	}

	start := meet.ParseInterviewTime(date, clock)
	event := meet.NewEvent(mailbox.ExtractName(email.From), "Software Engineer", start, 30*time.Minute)

	body := fmt.Sprintf(`Dear %s,

Thank you for confirming your availability. Your screening interview has been scheduled.

Interview Details:
- Date: %s
- Time: %s (%s)
- Duration: 30 minutes
- Meeting Link: %s

Add to your calendar: %s

Please join the meeting link at the scheduled time. If you need to reschedule, just reply to this email.

Best regards,
HR Team`,
		mailbox.ExtractName(email.From),
		start.Format("Monday, January 2, 2006"),
		start.Format("3:04 PM"),
		assessment.Timezone,
		event.MeetURL,
		meet.CalendarLink(event),
	)

	subject := "Interview Confirmed - " + start.Format("Monday, January 2")

	if _, _, err := s.mail.Send(ctx, candidateEmail, subject, body, false); err != nil {
		s.logger.Error("failed to send confirmation",
			zap.String(logger.FieldCandidate, candidateEmail),
			zap.Error(err),
		)
		return false
	}

	s.logger.Info("meeting scheduled from mailbox scan",
		zap.String(logger.FieldCandidate, candidateEmail),
		zap.Time("start", start),
	)
	return true
}
