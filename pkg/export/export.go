package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/borgmon/meetwatch/pkg/models"
)

// Format is an output format for a meeting snapshot
type Format string

const (
	FormatCSV  Format = "csv"
	FormatICS  Format = "ics"
	FormatXLSX Format = "xlsx"
)

// ErrNoMeetings is returned when there is nothing to export
var ErrNoMeetings = errors.New("no meetings to export")

// Header is the column order used by the tabular formats
var Header = []string{"ID", "Date", "Time", "Project", "Team", "Via", "Status", "Ticket URL", "Meet URL", "Client Status"}

// ParseFormat accepts a format name or file extension
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatCSV, FormatICS, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Write encodes meetings to w in the given format
func Write(w io.Writer, format Format, meetings []models.Meeting) error {
	if len(meetings) == 0 {
		return ErrNoMeetings
	}

	switch format {
	case FormatCSV:
		return WriteCSV(w, meetings)
	case FormatICS:
		return WriteICS(w, meetings)
	case FormatXLSX:
		return WriteXLSX(w, meetings)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func record(m models.Meeting) []string {
	return []string{m.ID, m.Date, m.Time, m.Project, m.Team, m.Via, m.Status, m.TicketURL, m.MeetURL, m.ClientStatus}
}
