package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(zap.NewNop(), "test-token")
	client.APIURL = server.URL
	return client, server
}

func TestSend(t *testing.T) {
	var gotRaw string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gmail/v1/users/me/messages/send" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected authorization header: %s", got)
		}

		var body sendRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotRaw = body.Raw

		json.NewEncoder(w).Encode(sendResponse{ID: "msg-1", ThreadID: "thr-1"})
	}))

	messageID, threadID, err := client.Send(context.Background(), "jane@example.com", "Interview Invitation", "Hello Jane", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if messageID != "msg-1" || threadID != "thr-1" {
		t.Fatalf("unexpected ids: %s %s", messageID, threadID)
	}

	decoded, err := base64.URLEncoding.DecodeString(gotRaw)
	if err != nil {
		t.Fatalf("decode raw message: %v", err)
	}
	mime := string(decoded)
	if !strings.Contains(mime, "To: jane@example.com") {
		t.Fatalf("expected recipient header, got: %s", mime)
	}
	if !strings.Contains(mime, "Subject: Interview Invitation") {
		t.Fatalf("expected subject header, got: %s", mime)
	}
	if !strings.Contains(mime, "Hello Jane") {
		t.Fatalf("expected body, got: %s", mime)
	}
}

func TestListUnread(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "is:unread in:inbox" {
			t.Fatalf("unexpected query: %s", got)
		}
		if got := r.URL.Query().Get("maxResults"); got != "25" {
			t.Fatalf("unexpected maxResults: %s", got)
		}
		w.Write([]byte(`{"messages": [{"id": "a"}, {"id": "b"}]}`))
	}))

	ids, err := client.ListUnread(context.Background(), "in:inbox", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestListUnreadEmpty(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	ids, err := client.ListUnread(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no ids, got %v", ids)
	}
}

func TestRead(t *testing.T) {
	body := base64.URLEncoding.EncodeToString([]byte("I am available Tuesday"))
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gmail/v1/users/me/messages/msg-9" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"id": "msg-9",
			"threadId": "thr-9",
			"labelIds": ["INBOX", "UNREAD"],
			"snippet": "I am available",
			"payload": {
				"mimeType": "multipart/alternative",
				"headers": [
					{"name": "From", "value": "Jane Doe <jane@example.com>"},
					{"name": "Subject", "value": "Re: Interview Invitation"}
				],
				"parts": [
					{"mimeType": "text/plain", "body": {"data": "` + body + `"}}
				]
			}
		}`))
	}))

	email, err := client.Read(context.Background(), "msg-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if email.From != "Jane Doe <jane@example.com>" {
		t.Fatalf("unexpected from: %s", email.From)
	}
	if email.Subject != "Re: Interview Invitation" {
		t.Fatalf("unexpected subject: %s", email.Subject)
	}
	if email.Body != "I am available Tuesday" {
		t.Fatalf("unexpected body: %q", email.Body)
	}
	if !email.Unread {
		t.Fatalf("expected unread flag")
	}
}

func TestMarkRead(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gmail/v1/users/me/messages/msg-3/modify" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var body modifyRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(body.RemoveLabelIDs) != 1 || body.RemoveLabelIDs[0] != "UNREAD" {
			t.Fatalf("unexpected labels: %v", body.RemoveLabelIDs)
		}
		w.Write([]byte(`{}`))
	}))

	if err := client.MarkRead(context.Background(), "msg-3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLatestReplyInThread(t *testing.T) {
	reply := base64.URLEncoding.EncodeToString([]byte("Monday at 2 PM works"))
	original := base64.URLEncoding.EncodeToString([]byte("Please share your availability"))

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gmail/v1/users/me/threads/thr-5" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"messages": [
			{
				"id": "m1", "threadId": "thr-5", "internalDate": "1000",
				"payload": {
					"mimeType": "text/plain",
					"headers": [{"name": "From", "value": "hr@company.com"}],
					"body": {"data": "` + original + `"}
				}
			},
			{
				"id": "m2", "threadId": "thr-5", "internalDate": "2000",
				"payload": {
					"mimeType": "text/plain",
					"headers": [{"name": "From", "value": "Jane <jane@example.com>"}],
					"body": {"data": "` + reply + `"}
				}
			}
		]}`))
	}))

	body, err := client.LatestReplyInThread(context.Background(), "thr-5", "jane@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "Monday at 2 PM works" {
		t.Fatalf("unexpected reply body: %q", body)
	}
}

func TestLatestReplyInThreadNoReply(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"messages": [{"id": "m1", "threadId": "thr-6", "internalDate": "1000", "payload": {"mimeType": "text/plain", "headers": [], "body": {}}}]}`))
	}))

	body, err := client.LatestReplyInThread(context.Background(), "thr-6", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "" {
		t.Fatalf("expected empty reply, got %q", body)
	}
}

func TestBadStatusSurfacesError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))

	if _, err := client.Read(context.Background(), "x"); err == nil {
		t.Fatalf("expected error for bad status")
	}
	if _, _, err := client.Send(context.Background(), "a@b.c", "s", "b", false); err == nil {
		t.Fatalf("expected error for bad status")
	}
}
