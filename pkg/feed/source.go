package feed

import (
	"context"
	"log"

	"github.com/borgmon/meetwatch/pkg/models"
)

// Source fetches the sheet and normalizes it into meetings
type Source struct {
	Fetcher  *Fetcher
	SheetKey func() string
}

// NewSource creates a Source reading the sheet key on every fetch, so
// settings changes apply to the next poll
func NewSource(fetcher *Fetcher, sheetKey func() string) *Source {
	return &Source{Fetcher: fetcher, SheetKey: sheetKey}
}

// Fetch downloads, parses and normalizes one snapshot of the feed
func (s *Source) Fetch(ctx context.Context) ([]models.Meeting, error) {
	key := ""
	if s.SheetKey != nil {
		key = s.SheetKey()
	}

	text, err := s.Fetcher.FetchRawFeed(ctx, key)
	if err != nil {
		return nil, err
	}

	rows := ParseCSV(text)
	meetings, stats := mapRows(rows)

	log.Printf("[FEED] [SUMMARY] Rows: %d, Meetings: %d, Date headers: %d, Empty: %d, Duplicate keys: %d",
		stats.rows, len(meetings), stats.dateHeaders, stats.emptyRows, stats.duplicateKeys)

	return meetings, nil
}
