package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestStringFieldsSkipsEmptyEntries(t *testing.T) {
	t.Parallel()

	fields := StringFields(
		StringField{Key: "candidate_email", Value: "jane.doe@example.com"},
		StringField{Key: "", Value: "dropped"},
		StringField{Key: "thread_id", Value: "   "},
	)

	if len(fields) != 1 {
		t.Fatalf("expected one field, got %d", len(fields))
	}

	if fields[0].Key != "candidate_email" {
		t.Fatalf("unexpected field key: %s", fields[0].Key)
	}
}

func TestAIFields(t *testing.T) {
	t.Parallel()

	fields := AIFields("gemini", "gemini-2.5-pro")
	if len(fields) != 2 {
		t.Fatalf("expected two fields, got %d", len(fields))
	}

	if fields[0].Key != FieldProvider || fields[1].Key != FieldModel {
		t.Fatalf("unexpected field keys: %s, %s", fields[0].Key, fields[1].Key)
	}
}

func TestCandidateFieldsOmitsUnknownThread(t *testing.T) {
	t.Parallel()

	fields := CandidateFields("jane.doe@example.com", "")
	if len(fields) != 1 {
		t.Fatalf("expected one field, got %d", len(fields))
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	t.Parallel()

	if got := WithFields(nil); got == nil {
		t.Fatalf("expected non-nil logger")
	}

	if got := WithFields(zap.NewNop(), zap.String("role", "scheduler")); got == nil {
		t.Fatalf("expected non-nil logger with fields")
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "hello world",
			limit:  5,
			expect: "hello...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
