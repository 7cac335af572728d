package models

import (
	"fmt"
	"time"
)

// AlertEvent is one fired threshold alert for a meeting
type AlertEvent struct {
	ID        string    // Unique identifier for the alert (UUID)
	MeetingID string    // Meeting the alert belongs to
	Label     string    // Threshold label, e.g. "30min"
	Threshold int       // Minutes before start
	Minutes   float64   // Minutes until start when fired
	Meeting   Meeting   // Snapshot of the meeting at firing time
	FiredAt   time.Time // When the alert fired
}

// ThresholdLabel returns the dedup label for a threshold in minutes
func ThresholdLabel(minutes int) string {
	return fmt.Sprintf("%dmin", minutes)
}

// Title returns a short human readable title for notifications
func (a AlertEvent) Title() string {
	name := a.Meeting.Project
	if name == "" {
		name = "Meeting"
	}
	return fmt.Sprintf("%s in %d min", name, a.Threshold)
}

// Body returns the notification body text
func (a AlertEvent) Body() string {
	body := fmt.Sprintf("%s at %s", a.Meeting.Date, a.Meeting.Time)
	if a.Meeting.Team != "" {
		body += " - " + a.Meeting.Team
	}
	if a.Meeting.Via != "" {
		body += " via " + a.Meeting.Via
	}
	return body
}
