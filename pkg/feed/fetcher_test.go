package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSheetKey(t *testing.T) {
	assert.Equal(t, "2PACX-abc_DEF-123", ResolveSheetKey(" 2PACX-abc_DEF-123 "))
	assert.Equal(t, DefaultSheetKey, ResolveSheetKey(""))
	assert.Equal(t, DefaultSheetKey, ResolveSheetKey("1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"))
	assert.Equal(t, DefaultSheetKey, ResolveSheetKey("2PACX-../../evil"))
}

func TestBuildFeedURL(t *testing.T) {
	now := time.UnixMilli(1736000000123)
	u := BuildFeedURL("", "2PACX-key", "42", now)

	assert.True(t, strings.HasPrefix(u, "https://docs.google.com/spreadsheets/d/e/2PACX-key/pub?"))
	assert.Contains(t, u, "gid=42")
	assert.Contains(t, u, "output=csv")
	assert.Contains(t, u, "t=1736000000123")
}

func newTestFetcher(url string) *Fetcher {
	f := NewFetcher()
	f.BaseURL = url
	return f
}

func TestFetchRawFeed(t *testing.T) {
	var gotPath, gotCache string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCache = r.Header.Get("Cache-Control")
		w.Write([]byte("Date,Project\n2025/01/05,Acme\n"))
	}))
	defer srv.Close()

	text, err := newTestFetcher(srv.URL).FetchRawFeed(context.Background(), "2PACX-key")
	require.NoError(t, err)
	assert.Equal(t, "Date,Project\n2025/01/05,Acme\n", text)
	assert.Equal(t, "/2PACX-key/pub", gotPath)
	assert.Contains(t, gotCache, "no-cache")
}

func TestFetchRawFeedWithoutSheetKey(t *testing.T) {
	hits := 0
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		gotPath = r.URL.Path
		w.Write([]byte("Date,Project\n"))
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL).FetchRawFeed(context.Background(), "not-a-publish-key")
	assert.ErrorIs(t, err, ErrNoSheetKey)
	assert.Equal(t, "config", ErrorKind(err))
	assert.Zero(t, hits, "no request without a key")

	previous := DefaultSheetKey
	DefaultSheetKey = "2PACX-built-in"
	t.Cleanup(func() { DefaultSheetKey = previous })

	_, err = newTestFetcher(srv.URL).FetchRawFeed(context.Background(), "not-a-publish-key")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
	assert.Equal(t, "/2PACX-built-in/pub", gotPath)
}

func TestFetchRawFeedStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL).FetchRawFeed(context.Background(), "2PACX-key")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, "status", ErrorKind(err))
}

func TestFetchRawFeedRejectsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  \n<!DOCTYPE html><html><body>Sign in</body></html>"))
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL).FetchRawFeed(context.Background(), "2PACX-key")

	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.True(t, strings.HasPrefix(formatErr.Preview, "<!DOCTYPE"))
	assert.Equal(t, "format", ErrorKind(err))
}

func TestFetchRawFeedEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL).FetchRawFeed(context.Background(), "2PACX-key")
	assert.ErrorIs(t, err, ErrEmptyFeed)
}

func TestSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Date,Project,Team,Time\n2025/01/05,Acme,Sales,9:15\n"))
	}))
	defer srv.Close()

	src := NewSource(newTestFetcher(srv.URL), func() string { return "2PACX-key" })
	meetings, err := src.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "21:15", meetings[0].Time)
}
