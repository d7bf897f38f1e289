package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/odellis/hireflow/internal/mailbox"
	"go.uber.org/zap"
)

const contentType = "application/json"

type sendRequest struct {
	Raw string `json:"raw"`
}

type sendResponse struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

type listResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type messagePart struct {
	MimeType string `json:"mimeType"`
	Body     struct {
		Data string `json:"data"`
	} `json:"body"`
	Parts []messagePart `json:"parts"`
}

type messageResponse struct {
	ID           string   `json:"id"`
	ThreadID     string   `json:"threadId"`
	LabelIDs     []string `json:"labelIds"`
	Snippet      string   `json:"snippet"`
	InternalDate string   `json:"internalDate"`
	Payload      struct {
		MimeType string `json:"mimeType"`
		Headers  []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
		Body struct {
			Data string `json:"data"`
		} `json:"body"`
		Parts []messagePart `json:"parts"`
	} `json:"payload"`
}

type threadResponse struct {
	Messages []messageResponse `json:"messages"`
}

type modifyRequest struct {
	AddLabelIDs    []string `json:"addLabelIds,omitempty"`
	RemoveLabelIDs []string `json:"removeLabelIds,omitempty"`
}

func (c *Client) Send(ctx context.Context, to, subject, body string, html bool) (string, string, error) {
	mime := "text/plain"
	if html {
		mime = "text/html"
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Content-Type: %s; charset=\"UTF-8\"\r\n", mime)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	payload, err := json.Marshal(sendRequest{
		Raw: base64.URLEncoding.EncodeToString([]byte(msg.String())),
	})
	if err != nil {
		return "", "", err
	}

	endpoint := fmt.Sprintf("%s/gmail/v1/users/%s/messages/send", c.APIURL, userID)
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.request(ctx, req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("send email: bad status: %s", resp.Status)
	}

	var sent sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		return "", "", err
	}

	c.logger.Debug("email sent",
		zap.String("message_id", sent.ID),
		zap.String("thread_id", sent.ThreadID),
	)

	return sent.ID, sent.ThreadID, nil
}

func (c *Client) ListUnread(ctx context.Context, query string, max int) ([]string, error) {
	if max <= 0 {
		max = 10
	}

	q := url.Values{}
	full := "is:unread"
	if query != "" {
		full = full + " " + query
	}
	q.Set("q", full)
	q.Set("maxResults", strconv.Itoa(max))

	endpoint := fmt.Sprintf("%s/gmail/v1/users/%s/messages", c.APIURL, userID)
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.request(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list messages: bad status: %s", resp.Status)
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Messages))
	for _, m := range list.Messages {
		ids = append(ids, m.ID)
	}

	return ids, nil
}

func (c *Client) Read(ctx context.Context, messageID string) (*mailbox.Email, error) {
	msg, err := c.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return msg.toEmail(), nil
}

func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	payload, err := json.Marshal(modifyRequest{RemoveLabelIDs: []string{"UNREAD"}})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/gmail/v1/users/%s/messages/%s/modify", c.APIURL, userID, messageID)
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.request(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mark read: bad status: %s", resp.Status)
	}

	return nil
}

func (c *Client) LatestReplyInThread(ctx context.Context, threadID, fromFilter string) (string, error) {
	endpoint := fmt.Sprintf("%s/gmail/v1/users/%s/threads/%s", c.APIURL, userID, threadID)
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.request(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("get thread: bad status: %s", resp.Status)
	}

	var thread threadResponse
	if err := json.NewDecoder(resp.Body).Decode(&thread); err != nil {
		return "", err
	}

	// A thread with a single message has no reply yet.
	if len(thread.Messages) <= 1 {
		return "", nil
	}

	original := thread.Messages[0].ID

	sort.Slice(thread.Messages, func(i, j int) bool {
		return internalDate(thread.Messages[i]) > internalDate(thread.Messages[j])
	})

	filter := strings.ToLower(fromFilter)
	for _, msg := range thread.Messages {
		email := msg.toEmail()
		if filter != "" {
			if strings.Contains(strings.ToLower(email.From), filter) {
				return email.Body, nil
			}
			continue
		}
		if msg.ID != original {
			return email.Body, nil
		}
	}

	return "", nil
}

func (c *Client) getMessage(ctx context.Context, messageID string) (*messageResponse, error) {
	endpoint := fmt.Sprintf("%s/gmail/v1/users/%s/messages/%s", c.APIURL, userID, messageID)
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.request(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get message: bad status: %s", resp.Status)
	}

	var msg messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, err
	}

	return &msg, nil
}

func (m *messageResponse) toEmail() *mailbox.Email {
	email := &mailbox.Email{
		ID:       m.ID,
		ThreadID: m.ThreadID,
		Snippet:  m.Snippet,
	}

	for _, header := range m.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "from":
			email.From = header.Value
		case "to":
			email.To = header.Value
		case "subject":
			email.Subject = header.Value
		}
	}

	for _, label := range m.LabelIDs {
		if label == "UNREAD" {
			email.Unread = true
		}
	}

	email.Body = extractBody(m)

	return email
}

// extractBody walks the MIME tree preferring text/plain parts over
// text/html, matching what the scheduling pipeline can actually parse.
func extractBody(m *messageResponse) string {
	if len(m.Payload.Parts) == 0 {
		if m.Payload.MimeType == "text/plain" || m.Payload.MimeType == "text/html" {
			return decodeBody(m.Payload.Body.Data)
		}
		return ""
	}

	var html string
	for _, part := range m.Payload.Parts {
		switch part.MimeType {
		case "text/plain":
			if part.Body.Data != "" {
				return decodeBody(part.Body.Data)
			}
		case "text/html":
			if part.Body.Data != "" {
				html = decodeBody(part.Body.Data)
			}
		}
	}

	return html
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(decoded)
}

func internalDate(m messageResponse) int64 {
	date, err := strconv.ParseInt(m.InternalDate, 10, 64)
	if err != nil {
		return 0
	}
	return date
}
