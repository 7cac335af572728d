package feed

import (
	"errors"
	"fmt"
)

// ErrEmptyFeed indicates the feed returned no rows at all
var ErrEmptyFeed = errors.New("feed is empty")

// ErrNoSheetKey indicates neither a configured nor a built-in publish key is available
var ErrNoSheetKey = errors.New("no sheet key configured")

// FetchError is returned when the feed endpoint answers with a non-success status
type FetchError struct {
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("feed request failed: %s", e.Status)
	}
	return fmt.Sprintf("feed request failed: HTTP %d", e.StatusCode)
}

// FormatError is returned when the provider serves an HTML page instead of CSV.
// The provider answers these with HTTP 200, so the status code alone can't catch it.
type FormatError struct {
	Preview string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("received HTML instead of CSV data - check that the sheet is published: %s", e.Preview)
}

// ErrorKind returns a short label for metrics and logs
func ErrorKind(err error) string {
	var fetchErr *FetchError
	var formatErr *FormatError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fetchErr):
		return "status"
	case errors.As(err, &formatErr):
		return "format"
	case errors.Is(err, ErrEmptyFeed):
		return "empty"
	case errors.Is(err, ErrNoSheetKey):
		return "config"
	default:
		return "transport"
	}
}
