// Package meet provides Google Meet link generation and interview time
// helpers. Links are synthesized rather than provisioned through the
// Calendar API; they follow the xxx-yyyy-zzz meeting id shape.
package meet

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"
)

const meetingIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// EventDetails describes a scheduled interview for calendar rendering.
type EventDetails struct {
	Title       string
	Start       time.Time
	End         time.Time
	MeetURL     string
	Description string
}

// GenerateURL returns a Meet-style link with a random meeting id.
func GenerateURL() string {
	return fmt.Sprintf("https://meet.google.com/%s-%s-%s",
		randomSegment(3), randomSegment(4), randomSegment(3))
}

func randomSegment(length int) string {
	var builder strings.Builder
	for i := 0; i < length; i++ {
		builder.WriteByte(meetingIDAlphabet[rand.Intn(len(meetingIDAlphabet))])
	}
	return builder.String()
}

// ParseInterviewTime combines a YYYY-MM-DD date and HH:MM clock into a UTC
// timestamp. ISO datetimes in the date field are accepted as-is. Anything
// unparseable falls back to 24 hours from now so scheduling never stalls on
// a malformed slot.
func ParseInterviewTime(dateStr, timeStr string) time.Time {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)

	if strings.Contains(dateStr, "T") {
		if ts, err := time.Parse(time.RFC3339, dateStr); err == nil {
			return ts
		}
	}

	if ts, err := time.Parse("2006-01-02 15:04", dateStr+" "+timeStr); err == nil {
		return ts.UTC()
	}

	return time.Now().UTC().Add(24 * time.Hour)
}

// NewEvent builds the interview event details around a fresh Meet link.
func NewEvent(candidateName, position string, start time.Time, duration time.Duration) *EventDetails {
	if duration <= 0 {
		duration = time.Hour
	}

	meetURL := GenerateURL()
	description := fmt.Sprintf(`Interview Details:
- Candidate: %s
- Position: %s
- Duration: %d minutes
- Meeting Link: %s

Interview Agenda:
1. Introduction and background (10 mins)
2. Technical discussion (30 mins)
3. Questions from candidate (15 mins)
4. Next steps (5 mins)

Please join the meeting a few minutes early to test your connection.`,
		candidateName, position, int(duration.Minutes()), meetURL)

	return &EventDetails{
		Title:       fmt.Sprintf("Interview with %s - %s", candidateName, position),
		Start:       start,
		End:         start.Add(duration),
		MeetURL:     meetURL,
		Description: description,
	}
}

// CalendarLink renders a Google Calendar event-template URL for the event.
func CalendarLink(event *EventDetails) string {
	const layout = "20060102T150405Z"

	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", event.Title)
	params.Set("dates", event.Start.UTC().Format(layout)+"/"+event.End.UTC().Format(layout))
	params.Set("details", event.Description)
	params.Set("location", event.MeetURL)

	return "https://calendar.google.com/calendar/render?" + params.Encode()
}
