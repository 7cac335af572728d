package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/borgmon/meetwatch/pkg/models"
	"github.com/emersion/go-ical"
)

const (
	productID = "-//borgmon//meetwatch//EN"

	// DefaultDuration is used for DTEND since the feed carries no end time
	DefaultDuration = 30 * time.Minute
)

// WriteICS writes one VEVENT per meeting with a resolvable start time.
// Meetings without a parsable date or time are skipped.
func WriteICS(w io.Writer, meetings []models.Meeting) error {
	cal := BuildCalendar(meetings, time.Now())
	if len(cal.Children) == 0 {
		return ErrNoMeetings
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// BuildCalendar converts meetings into a VCALENDAR stamped at now
func BuildCalendar(meetings []models.Meeting, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, m := range meetings {
		start, ok := m.StartsAt(time.Local)
		if !ok {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, m.ID+"@meetwatch")
		event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(DefaultDuration).UTC())
		event.Props.SetText(ical.PropSummary, summary(m))

		if desc := description(m); desc != "" {
			event.Props.SetText(ical.PropDescription, desc)
		}
		if m.MeetURL != "" {
			event.Props.SetText(ical.PropLocation, m.MeetURL)
		}
		switch m.StatusKind() {
		case models.StatusCancelled:
			event.Props.SetText(ical.PropStatus, "CANCELLED")
		default:
			event.Props.SetText(ical.PropStatus, "CONFIRMED")
		}

		cal.Children = append(cal.Children, event.Component)
	}

	return cal
}

func summary(m models.Meeting) string {
	if m.Team == "" {
		return m.Project
	}
	return fmt.Sprintf("%s (%s)", m.Project, m.Team)
}

func description(m models.Meeting) string {
	var lines []string
	if m.Via != "" {
		lines = append(lines, "Via: "+m.Via)
	}
	if m.Status != "" {
		lines = append(lines, "Status: "+m.Status)
	}
	if m.TicketURL != "" {
		lines = append(lines, "Ticket: "+m.TicketURL)
	}
	return strings.Join(lines, "\n")
}
