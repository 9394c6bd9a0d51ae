package fetchers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Realm News</title>
  <item>
    <title>Patch 1.2 released</title>
    <link>https://example.com/patch-1-2</link>
    <description>New dungeon and class balance changes.</description>
    <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
  </item>
  <item>
    <title>Server maintenance</title>
    <link>https://example.com/maintenance</link>
  </item>
</channel>
</rss>`

func TestNewsFetcherLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	f := NewNewsFetcher(nil, srv.URL)
	require.True(t, f.Enabled())

	items := f.Latest(context.Background(), 10)
	require.Len(t, items, 2)
	assert.Equal(t, "Patch 1.2 released", items[0].Title)
	assert.Equal(t, 2006, items[0].Published.Year())
	assert.Equal(t, "New dungeon and class balance changes.", items[0].Summary)

	assert.Len(t, f.Latest(context.Background(), 1), 1)
}

func TestNewsFetcherFailuresYieldEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	assert.Empty(t, NewNewsFetcher(nil, srv.URL).Latest(context.Background(), 5))

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer garbage.Close()

	assert.Empty(t, NewNewsFetcher(nil, garbage.URL).Latest(context.Background(), 5))
}

func TestNewsFetcherDisabled(t *testing.T) {
	f := NewNewsFetcher(nil, "")
	assert.False(t, f.Enabled())
	assert.Nil(t, f.Latest(context.Background(), 5))

	var nilFetcher *NewsFetcher
	assert.False(t, nilFetcher.Enabled())
}
