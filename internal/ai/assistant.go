package ai

import "context"

// ResponseType is the tri-state outcome of classifying a candidate reply.
type ResponseType string

const (
	ResponseAccept  ResponseType = "accept"
	ResponseReject  ResponseType = "reject"
	ResponseUnclear ResponseType = "unclear"
)

// ReplyAssessment is the structured result of classifying a candidate's
// free-text reply to an interview invitation.
type ReplyAssessment struct {
	ResponseType     ResponseType
	PreferredDates   []string
	PreferredTimes   []string
	Timezone         string
	Constraints      []string
	Confidence       float64
	Reason           string
	CandidateMessage string
	Raw              string
}

// FirstSlot returns the first proposed date/time pair in arrival order. When
// several options are present the first one wins; there is no scoring among
// options.
func (a *ReplyAssessment) FirstSlot() (date, clock string, ok bool) {
	if a == nil || len(a.PreferredDates) == 0 || len(a.PreferredTimes) == 0 {
		return "", "", false
	}
	return a.PreferredDates[0], a.PreferredTimes[0], true
}

// Unclear builds the assessment returned whenever classification cannot
// produce a usable result. Callers treat it as "needs manual follow-up",
// never as an error.
func Unclear(reason string) *ReplyAssessment {
	return &ReplyAssessment{
		ResponseType:     ResponseUnclear,
		Timezone:         "UTC",
		Confidence:       0,
		Reason:           reason,
		CandidateMessage: "Unable to parse candidate response",
	}
}

// ReplyClassifier turns a candidate reply into a ReplyAssessment.
type ReplyClassifier interface {
	ClassifyReply(ctx context.Context, replyText string) (*ReplyAssessment, error)
}

// Detection is the result of the "is this a candidate response" pre-filter
// applied during mailbox-wide scans.
type Detection struct {
	IsCandidateResponse  bool
	Confidence           float64
	Reason               string
	ContainsAvailability bool
}

// ResponseDetector decides whether an arbitrary unread email looks like a
// candidate responding to a scheduling request.
type ResponseDetector interface {
	DetectResponse(ctx context.Context, subject, body string) (*Detection, error)
}

// InterviewQuestion is one entry of a generated screening-interview guide.
type InterviewQuestion struct {
	Question      string
	Purpose       string
	FollowUpHints string
}

// CVAnalysis is the structured result of analyzing a candidate CV against a
// job description.
type CVAnalysis struct {
	CandidateName     string
	CandidateEmail    string
	KeySkills         []string
	ExperienceYears   int
	Education         string
	Highlights        []string
	MatchScore        int
	Summary           string
	Questions         []InterviewQuestion
	EstimatedDuration string
	FocusAreas        []string
}

// CVAnalyzer produces a CVAnalysis. Implementations may be model-backed or
// deterministic; both sit behind this interface so deployments and tests can
// swap them.
type CVAnalyzer interface {
	AnalyzeCV(ctx context.Context, candidateName, cvText, jobDescription string) (*CVAnalysis, error)
}

// Answer quality and completeness grades used by the interview pipeline.
const (
	QualityPoor      = "Poor"
	QualityFair      = "Fair"
	QualityGood      = "Good"
	QualityExcellent = "Excellent"

	CompletenessComplete   = "Complete"
	CompletenessPartial    = "Partial"
	CompletenessIncomplete = "Incomplete"
)

// Hiring recommendations produced by candidate evaluation.
const (
	RecommendHire             = "Hire"
	RecommendNoHire           = "No Hire"
	RecommendFurtherInterview = "Further Interview"
)

// QAPair is one question/answer exchange extracted from an interview
// transcript, annotated by the summary stage.
type QAPair struct {
	Number   int
	Question string
	Answer   string
	Category string

	Summary      string
	KeyPoints    []string
	Quality      string
	Completeness string
}

// AnswerSummary is the per-answer result of the summary stage.
type AnswerSummary struct {
	Summary      string
	KeyPoints    []string
	Quality      string
	Completeness string
}

// CompetencyScore is a scored sub-assessment with free-form comments.
type CompetencyScore struct {
	Score    int
	Comments string
}

// QuestionScore grades a single answer within the aggregate evaluation.
type QuestionScore struct {
	Number   int
	Score    int
	Feedback string
}

// Evaluation is the aggregate result of assessing interview performance.
type Evaluation struct {
	OverallScore        int
	Recommendation      string
	Strengths           []string
	ImprovementAreas    []string
	TechnicalCompetence CompetencyScore
	CommunicationSkills CompetencyScore
	CulturalFit         CompetencyScore
	DetailedComments    string
	QuestionScores      []QuestionScore
}

// InterviewAnalyzer covers the three stages of transcript analysis. Each
// stage fails independently; callers degrade per-stage rather than aborting
// the whole analysis.
type InterviewAnalyzer interface {
	ExtractQA(ctx context.Context, transcript string) ([]QAPair, error)
	SummarizeAnswer(ctx context.Context, qa QAPair) (*AnswerSummary, error)
	Evaluate(ctx context.Context, candidateName, position string, qas []QAPair) (*Evaluation, error)
}
