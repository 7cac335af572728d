package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// StatusKind is the coarse classification of a free-text meeting status
type StatusKind int

const (
	StatusActive StatusKind = iota
	StatusDone
	StatusCancelled
	StatusFailed
)

func (k StatusKind) String() string {
	switch k {
	case StatusDone:
		return "done"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "active"
	}
}

// Status vocabulary, matched case-insensitively as substrings. The feed mixes
// English and Arabic free text, so both are listed.
var (
	// NotDoneMarkers are checked before DoneMarkers since "done" is a substring of "not done"
	NotDoneMarkers = []string{
		"not done", "undone", "not completed", "uncompleted", "incomplete",
		"not finished", "unfinished", "لم يتم", "لم تتم", "غير منتهي",
	}

	DoneMarkers = []string{"done", "completed", "complete", "finished", "منتهي", "انتهى"}

	// DoneWords only match as whole words. "تم" is also a fragment of
	// everyday words like "اجتماع" and "مستمر".
	DoneWords = []string{"تم", "تمت"}

	CancelledMarkers = []string{"cancel", "postpone", "rescheduled", "ملغي", "الغاء", "إلغاء", "مؤجل", "تأجيل"}

	FailedMarkers = []string{"failed", "fail", "no show", "فشل"}
)

// ClassifyStatus maps status text to a StatusKind.
// Cancelled wins over failed, failed wins over done.
func ClassifyStatus(status string) StatusKind {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return StatusActive
	}

	if containsAny(s, CancelledMarkers) {
		return StatusCancelled
	}
	if containsAny(s, FailedMarkers) {
		return StatusFailed
	}
	if IsDoneStatus(s) {
		return StatusDone
	}
	return StatusActive
}

// IsDoneStatus reports a positive completion that isn't negated
func IsDoneStatus(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	if containsAny(s, NotDoneMarkers) {
		return false
	}
	return containsAny(s, DoneMarkers) || containsWord(s, DoneWords)
}

// IsCancelledStatus reports cancellation or postponement vocabulary
func IsCancelledStatus(status string) bool {
	return containsAny(strings.ToLower(status), CancelledMarkers)
}

// IsTerminal reports whether no further alerts should fire for the status
func (k StatusKind) IsTerminal() bool {
	return k == StatusDone || k == StatusCancelled || k == StatusFailed
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// containsWord reports whether any marker occurs in s bounded by non-letters
// on both sides. Combining marks such as shadda count as boundaries.
func containsWord(s string, markers []string) bool {
	for _, m := range markers {
		for offset := 0; offset < len(s); {
			i := strings.Index(s[offset:], m)
			if i < 0 {
				break
			}
			start := offset + i
			end := start + len(m)

			before, _ := utf8.DecodeLastRuneInString(s[:start])
			after, _ := utf8.DecodeRuneInString(s[end:])
			if !isWordRune(before) && !isWordRune(after) {
				return true
			}
			offset = end
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
