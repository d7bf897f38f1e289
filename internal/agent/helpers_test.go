package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/odellis/hireflow/internal/ai"
	"github.com/odellis/hireflow/internal/mailbox"
)

// recordingDispatcher captures every dispatched message for assertions.
type recordingDispatcher struct {
	mu       sync.Mutex
	messages []*Message
}

func (d *recordingDispatcher) Dispatch(msg *Message) {
	d.mu.Lock()
	d.messages = append(d.messages, msg)
	d.mu.Unlock()
}

func (d *recordingDispatcher) all() []*Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Message, len(d.messages))
	copy(out, d.messages)
	return out
}

func (d *recordingDispatcher) byTaskType(taskType string) []*Message {
	var out []*Message
	for _, msg := range d.all() {
		if payloadString(msg.Payload, "task_type") == taskType {
			out = append(out, msg)
		}
	}
	return out
}

func (d *recordingDispatcher) byEvent(event string) []*Message {
	var out []*Message
	for _, msg := range d.all() {
		if payloadString(msg.Payload, "event") == event {
			out = append(out, msg)
		}
	}
	return out
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// fakeMailbox records sends and serves canned thread replies.
type fakeMailbox struct {
	mu      sync.Mutex
	sent    []sentEmail
	sendErr error
	replies map[string]string // thread id -> reply body
	nextID  int
}

func (m *fakeMailbox) Send(_ context.Context, to, subject, body string, html bool) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return "", "", m.sendErr
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Body: body, HTML: html})
	m.nextID++
	return fmt.Sprintf("msg-%d", m.nextID), fmt.Sprintf("thread-%d", m.nextID), nil
}

func (m *fakeMailbox) ListUnread(context.Context, string, int) ([]string, error) {
	return nil, nil
}

func (m *fakeMailbox) Read(context.Context, string) (*mailbox.Email, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *fakeMailbox) MarkRead(context.Context, string) error { return nil }

func (m *fakeMailbox) LatestReplyInThread(_ context.Context, threadID, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replies[threadID], nil
}

func (m *fakeMailbox) sentEmails() []sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}

// stubClassifier returns a fixed assessment regardless of input.
type stubClassifier struct {
	assessment *ai.ReplyAssessment
	err        error
	calls      int
}

func (c *stubClassifier) ClassifyReply(context.Context, string) (*ai.ReplyAssessment, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.assessment, nil
}

// stubCVAnalyzer returns a fixed analysis or error.
type stubCVAnalyzer struct {
	analysis *ai.CVAnalysis
	err      error
	calls    int
}

func (a *stubCVAnalyzer) AnalyzeCV(_ context.Context, candidateName, _, _ string) (*ai.CVAnalysis, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	out := *a.analysis
	if out.CandidateName == "" {
		out.CandidateName = candidateName
	}
	return &out, nil
}

// stubInterviewAnalyzer drives the three pipeline stages independently.
type stubInterviewAnalyzer struct {
	qas        []ai.QAPair
	extractErr error

	summary    *ai.AnswerSummary
	summaryErr error

	evaluation *ai.Evaluation
	evalErr    error
}

func (a *stubInterviewAnalyzer) ExtractQA(context.Context, string) ([]ai.QAPair, error) {
	if a.extractErr != nil {
		return nil, a.extractErr
	}
	out := make([]ai.QAPair, len(a.qas))
	copy(out, a.qas)
	return out, nil
}

func (a *stubInterviewAnalyzer) SummarizeAnswer(context.Context, ai.QAPair) (*ai.AnswerSummary, error) {
	if a.summaryErr != nil {
		return nil, a.summaryErr
	}
	return a.summary, nil
}

func (a *stubInterviewAnalyzer) Evaluate(context.Context, string, string, []ai.QAPair) (*ai.Evaluation, error) {
	if a.evalErr != nil {
		return nil, a.evalErr
	}
	return a.evaluation, nil
}

var analysisFixture = ai.CVAnalysis{
	CandidateName:   "Jane Doe",
	KeySkills:       []string{"Go"},
	ExperienceYears: 5,
	MatchScore:      80,
	Summary:         "Solid candidate",
	Questions:       []ai.InterviewQuestion{{Question: "Walk me through a recent project."}},
}

func acceptAssessment(dates, times []string) *ai.ReplyAssessment {
	return &ai.ReplyAssessment{
		ResponseType:     ai.ResponseAccept,
		PreferredDates:   dates,
		PreferredTimes:   times,
		Timezone:         "UTC",
		Confidence:       0.95,
		CandidateMessage: "I'm available Monday at 2 PM UTC",
	}
}
