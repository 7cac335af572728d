package feed

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/borgmon/meetwatch/pkg/models"
	"github.com/google/uuid"
)

// Fixed column positions of the meeting sheet. Row 0 is a header.
const (
	colDate = iota
	colProject
	colTeam
	colTime
	colVia
	colStatus
	colTicketURL
	colMeetURL
	colClientStatus
)

var (
	timePattern   = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	nonTimeChars  = regexp.MustCompile(`[^0-9:]+`)
	dateSeparator = regexp.MustCompile(`[/-]`)

	// meetingNamespace scopes content-derived meeting IDs
	meetingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("meetwatch/meeting"))
)

// Morning and evening markers, English and Arabic
// Arabic word markers match as substrings so that attached articles and
// tanween still match. Short markers only count as standalone tokens.
var (
	amWordMarkers  = []string{"صباح"}
	pmWordMarkers  = []string{"مساء", "ظهر", "عصر"}
	amTokenMarkers = []string{"am", "ص"}
	pmTokenMarkers = []string{"pm", "م"}
)

// ForwardFillDates copies the running date down into rows that omit it.
// The sheet lists one date over a block of same-day rows. The input is not modified.
func ForwardFillDates(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	current := ""

	for _, row := range rows {
		filled := make([]string, len(row))
		copy(filled, row)
		if len(filled) == 0 {
			filled = []string{""}
		}

		if cell := strings.TrimSpace(filled[colDate]); looksLikeDate(cell) {
			current = cell
		}
		filled[colDate] = current

		out = append(out, filled)
	}

	return out
}

func looksLikeDate(cell string) bool {
	return cell != "" && hasDigit(cell) && strings.ContainsAny(cell, "/-")
}

// IsDateHeaderRow reports a row that only carries a date: column 0 holds a
// digit and at most one other column is populated.
func IsDateHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.TrimSpace(row[colDate])
	if first == "" || !hasDigit(first) {
		return false
	}

	populated := 0
	for _, cell := range row[1:] {
		if strings.TrimSpace(cell) != "" {
			populated++
		}
	}
	return populated <= 1
}

// ParseTimeStr normalizes a loosely written time to 24-hour HH:MM.
//
// Without an AM/PM marker the sheet's business-hours convention applies:
// hours below 10 are afternoon, 10 and 11 are morning, 12 is noon.
// Input without an H:MM pattern is returned trimmed and unconverted.
func ParseTimeStr(raw string) string {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	isPM, isAM := meridiem(lower)

	m := timePattern.FindStringSubmatch(nonTimeChars.ReplaceAllString(trimmed, ""))
	if m == nil {
		return trimmed
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	switch {
	case isPM:
		if hour < 12 {
			hour += 12
		}
	case isAM:
		if hour == 12 {
			hour = 0
		}
	default:
		if hour < 10 {
			hour += 12
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// meridiem looks for word markers first and falls back to standalone tokens.
// PM wins when both appear at the same level.
func meridiem(lower string) (isPM, isAM bool) {
	if containsAny(lower, pmWordMarkers) {
		return true, false
	}
	if containsAny(lower, amWordMarkers) {
		return false, true
	}

	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if hasToken(tokens, pmTokenMarkers) {
		return true, false
	}
	return false, hasToken(tokens, amTokenMarkers)
}

func hasToken(tokens, markers []string) bool {
	for _, t := range tokens {
		for _, m := range markers {
			if t == m {
				return true
			}
		}
	}
	return false
}

// NormalizeDate rewrites YYYY-M-D and D/M/YYYY dates as YYYY/MM/DD.
// Any other shape is returned unchanged.
func NormalizeDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parts := dateSeparator.Split(trimmed, -1)
	if len(parts) != 3 {
		return trimmed
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch {
	case isYear(parts[0]):
		return parts[0] + "/" + pad2(parts[1]) + "/" + pad2(parts[2])
	case isYear(parts[2]):
		return parts[2] + "/" + pad2(parts[1]) + "/" + pad2(parts[0])
	default:
		return trimmed
	}
}

// MapRowsToMeetings turns parsed CSV rows into meetings
func MapRowsToMeetings(rows [][]string) []models.Meeting {
	meetings, _ := mapRows(rows)
	return meetings
}

type mapStats struct {
	rows          int
	dateHeaders   int
	emptyRows     int
	duplicateKeys int
}

func mapRows(rows [][]string) ([]models.Meeting, mapStats) {
	stats := mapStats{}
	meetings := []models.Meeting{}
	if len(rows) <= 1 {
		return meetings, stats
	}

	seenIDs := make(map[string]int)

	for _, row := range ForwardFillDates(rows[1:]) {
		stats.rows++
		if IsDateHeaderRow(row) {
			stats.dateHeaders++
			continue
		}

		project := cell(row, colProject)
		rawTime := cell(row, colTime)
		if project == "" && rawTime == "" {
			stats.emptyRows++
			continue
		}

		m := models.Meeting{
			Date:         NormalizeDate(cell(row, colDate)),
			Time:         ParseTimeStr(rawTime),
			Project:      project,
			Team:         cell(row, colTeam),
			Via:          cell(row, colVia),
			Status:       cell(row, colStatus),
			TicketURL:    cell(row, colTicketURL),
			MeetURL:      extractMeetingLink(cell(row, colMeetURL)),
			ClientStatus: cell(row, colClientStatus),
		}

		id := meetingID(m)
		seenIDs[id]++
		if n := seenIDs[id]; n > 1 {
			stats.duplicateKeys++
			id = fmt.Sprintf("%s-%d", id, n)
		}
		m.ID = id

		meetings = append(meetings, m)
	}

	return meetings, stats
}

// meetingID derives an identifier from date, project and time so that
// inserting or reordering rows doesn't hand an ID to a different meeting
func meetingID(m models.Meeting) string {
	key := strings.ToLower(m.Date + "|" + m.Project + "|" + m.Time)
	id := uuid.NewSHA1(meetingNamespace, []byte(key))
	return "m-" + strings.ReplaceAll(id.String(), "-", "")[:12]
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"{}|\\^[\]` + "`" + `]+`)

// extractMeetingLink picks the meeting URL out of a cell that may hold extra text
func extractMeetingLink(text string) string {
	matches := urlPattern.FindAllString(text, -1)

	// Prioritize known meeting platforms
	for _, match := range matches {
		lower := strings.ToLower(match)
		if strings.Contains(lower, "zoom") ||
			strings.Contains(lower, "meet.google") ||
			strings.Contains(lower, "teams.microsoft") ||
			strings.Contains(lower, "webex") {
			return match
		}
	}

	if len(matches) > 0 {
		return matches[0]
	}
	return strings.TrimSpace(text)
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
