package models

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the normalized, lexically sortable meeting date format
const DateLayout = "2006/01/02"

// Meeting represents one scheduled row of the meeting feed
type Meeting struct {
	ID           string `json:"id"`           // Unique within a snapshot
	Date         string `json:"date"`         // YYYY/MM/DD when parseable
	Time         string `json:"time"`         // HH:MM 24-hour, raw text when unparseable
	Project      string `json:"project"`      // Project / client name
	Team         string `json:"team"`         // Owning team, also selects the audio cue
	Via          string `json:"via"`          // Meeting channel (Meet, Zoom, phone...)
	Status       string `json:"status"`       // Free-text status, see ClassifyStatus
	TicketURL    string `json:"ticketUrl"`    // Ticket link
	MeetURL      string `json:"meetUrl"`      // Meeting link
	ClientStatus string `json:"clientStatus"` // Free-text client status
}

// SyncResult is the payload handed to the dashboard after every sync
type SyncResult struct {
	Meetings  []Meeting `json:"meetings"`
	FromCache bool      `json:"fromCache"`
	Error     string    `json:"error,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// ScheduledMinutes returns the start time as minutes since midnight.
// The second result is false when Time is not a normalized HH:MM value.
func (m Meeting) ScheduledMinutes() (int, bool) {
	hh, mm, ok := strings.Cut(m.Time, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	min, err := strconv.Atoi(mm)
	if err != nil || min < 0 || min > 59 {
		return 0, false
	}
	return h*60 + min, true
}

// StartsAt resolves Date and Time into an absolute time in loc
func (m Meeting) StartsAt(loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation(DateLayout, m.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	minutes, ok := m.ScheduledMinutes()
	if !ok {
		return time.Time{}, false
	}
	return day.Add(time.Duration(minutes) * time.Minute), true
}

// IsOn reports whether the meeting is scheduled on the local calendar day of t
func (m Meeting) IsOn(t time.Time) bool {
	return m.Date == t.Format(DateLayout)
}

// StatusKind returns the classified status of the meeting
func (m Meeting) StatusKind() StatusKind {
	return ClassifyStatus(m.Status)
}

// CloneMeetings returns a copy of the slice so callers can't mutate a published snapshot
func CloneMeetings(meetings []Meeting) []Meeting {
	if meetings == nil {
		return nil
	}
	out := make([]Meeting, len(meetings))
	copy(out, meetings)
	return out
}
