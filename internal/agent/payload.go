package agent

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/odellis/hireflow/internal/ai"
)

// decodePayload maps the loosely-typed message payload onto a typed struct.
func decodePayload(payload map[string]any, out any) error {
	if err := mapstructure.Decode(payload, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// assessmentFromPayload pulls a reply assessment out of a payload. The email
// monitor ships the classified assessment along with its notification;
// callers fall back to classifying the raw text themselves when it is
// missing.
func assessmentFromPayload(payload map[string]any) *ai.ReplyAssessment {
	switch v := payload["assessment"].(type) {
	case *ai.ReplyAssessment:
		return v
	case ai.ReplyAssessment:
		return &v
	default:
		return nil
	}
}

func payloadString(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}
