package feed

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultSheetKey is used whenever the configured key is not a publish key.
// It is empty unless set at build time with
// -ldflags "-X github.com/borgmon/meetwatch/pkg/feed.DefaultSheetKey=2PACX-...",
// in which case an unconfigured install fails with ErrNoSheetKey.
var DefaultSheetKey = ""

const (
	// DefaultGID selects the first tab of the published sheet
	DefaultGID = "0"

	publishBaseURL = "https://docs.google.com/spreadsheets/d/e/"
)

var publishKeyPattern = regexp.MustCompile(`^2PACX-[A-Za-z0-9_-]+$`)

// ResolveSheetKey returns key when it looks like a publish key and the default otherwise
func ResolveSheetKey(key string) string {
	key = strings.TrimSpace(key)
	if publishKeyPattern.MatchString(key) {
		return key
	}
	return DefaultSheetKey
}

// BuildFeedURL returns the published CSV URL for the key with a cache-busting timestamp
func BuildFeedURL(baseURL, sheetKey, gid string, now time.Time) string {
	if baseURL == "" {
		baseURL = publishBaseURL
	}
	if gid == "" {
		gid = DefaultGID
	}

	q := url.Values{}
	q.Set("gid", gid)
	q.Set("single", "true")
	q.Set("output", "csv")
	q.Set("t", strconv.FormatInt(now.UnixMilli(), 10))

	return strings.TrimRight(baseURL, "/") + "/" + ResolveSheetKey(sheetKey) + "/pub?" + q.Encode()
}

// Fetcher downloads the raw CSV text of a published sheet
type Fetcher struct {
	Client  *http.Client
	BaseURL string // overrides the provider endpoint, used by tests
	GID     string
	Now     func() time.Time
}

// NewFetcher creates a Fetcher with a bounded HTTP client
func NewFetcher() *Fetcher {
	return &Fetcher{
		Client: &http.Client{Timeout: 20 * time.Second},
		GID:    DefaultGID,
		Now:    time.Now,
	}
}

// FetchRawFeed fetches the CSV body for sheetKey
func (f *Fetcher) FetchRawFeed(ctx context.Context, sheetKey string) (string, error) {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	if ResolveSheetKey(sheetKey) == "" {
		log.Printf("[FEED] No sheet key configured, set one in Settings or with --sheet-key")
		return "", ErrNoSheetKey
	}

	feedURL := BuildFeedURL(f.BaseURL, sheetKey, f.GID, now())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", &FetchError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	bodyStr := string(body)
	if err := validateCSVFormat(bodyStr); err != nil {
		log.Printf("[FEED] Rejected response from %s: %v", resp.Request.URL.Host, err)
		return "", err
	}

	return bodyStr, nil
}

func validateCSVFormat(bodyStr string) error {
	trimmed := strings.TrimSpace(bodyStr)
	if strings.HasPrefix(trimmed, "<") {
		previewLen := 100
		if len(trimmed) < previewLen {
			previewLen = len(trimmed)
		}
		return &FormatError{Preview: trimmed[:previewLen]}
	}
	if trimmed == "" {
		return ErrEmptyFeed
	}
	return nil
}
