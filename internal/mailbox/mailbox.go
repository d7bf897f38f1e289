// Package mailbox defines the email surface the coordination layer depends
// on. The gmail subpackage provides the production implementation; tests use
// in-memory fakes.
package mailbox

import (
	"context"
	"strings"
)

// Email is a single message as seen by the coordination layer.
type Email struct {
	ID       string
	ThreadID string
	From     string
	To       string
	Subject  string
	Body     string
	Snippet  string
	Unread   bool
}

// Mailbox is the operations set the agents and pollers need.
type Mailbox interface {
	// Send delivers an email and returns the provider message and thread ids.
	Send(ctx context.Context, to, subject, body string, html bool) (messageID, threadID string, err error)

	// ListUnread returns ids of unread messages matching the query, capped
	// at max.
	ListUnread(ctx context.Context, query string, max int) ([]string, error)

	// Read fetches a single message by id.
	Read(ctx context.Context, messageID string) (*Email, error)

	// MarkRead removes the unread marker from a message.
	MarkRead(ctx context.Context, messageID string) error

	// LatestReplyInThread returns the body of the newest reply in a thread,
	// optionally filtered to a sender. Empty string when the thread has no
	// reply yet.
	LatestReplyInThread(ctx context.Context, threadID, fromFilter string) (string, error)
}

// ExtractAddress pulls a bare address out of a From header like
// `Jane Doe <jane@example.com>`.
func ExtractAddress(from string) string {
	if open := strings.LastIndex(from, "<"); open != -1 {
		if end := strings.LastIndex(from, ">"); end > open {
			return strings.TrimSpace(from[open+1 : end])
		}
	}
	return strings.TrimSpace(from)
}

// ExtractName derives a display name from a From header, falling back to a
// title-cased mailbox local part.
func ExtractName(from string) string {
	if open := strings.Index(from, "<"); open != -1 {
		name := strings.Trim(strings.TrimSpace(from[:open]), `"`)
		if name != "" {
			return name
		}
	}

	address := ExtractAddress(from)
	local := address
	if at := strings.Index(address, "@"); at != -1 {
		local = address[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)
	return titleCase(local)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
