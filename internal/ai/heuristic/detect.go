package heuristic

import (
	"context"
	"strings"

	"github.com/odellis/hireflow/internal/ai"
)

var (
	replyIndicators       = []string{"re:", "interview", "screening"}
	availabilityKeywords  = []string{"available", "schedule", "time", "date", "thanks for your email"}
	minMeaningfulBodySize = 20
)

// Detector is the keyword fallback used when the model-backed detector is
// unavailable or errors out.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) DetectResponse(_ context.Context, subject, body string) (*ai.Detection, error) {
	subjectLower := strings.ToLower(subject)
	bodyLower := strings.ToLower(body)

	hasReplyIndicator := containsAny(subjectLower, replyIndicators)
	hasAvailability := containsAny(bodyLower, availabilityKeywords)

	match := hasReplyIndicator || (hasAvailability && len(body) > minMeaningfulBodySize)

	detection := &ai.Detection{
		IsCandidateResponse:  match,
		ContainsAvailability: hasAvailability,
		Reason:               "keyword detection",
	}
	if match {
		detection.Confidence = 1
	}

	return detection, nil
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
