package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcastelli/streampulse/internal/logger"
)

const samplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="news1",News One
http://example.com/news1.m3u8
`

func newTestFetcher() *Fetcher {
	return New(Config{
		TimeoutSeconds: 5,
		MaxFileSizeMB:  1,
		RetryAttempts:  2,
		Logger:         logger.New(logger.Config{MinLevel: logger.LevelError}),
	})
}

func TestFetchValidPlaylist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.Write([]byte(samplePlaylist))
	}))
	defer server.Close()

	result, err := newTestFetcher().Fetch(context.Background(), server.URL, Conditional{})
	require.NoError(t, err)

	assert.Equal(t, samplePlaylist, result.Content)
	assert.False(t, result.NotModified)
	assert.Equal(t, `"v1"`, result.ETag)
	assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 GMT", result.LastModified)
}

func TestFetchSendsConditionalHeaders(t *testing.T) {
	var gotETag, gotModified string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotETag = r.Header.Get("If-None-Match")
		gotModified = r.Header.Get("If-Modified-Since")
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	result, err := newTestFetcher().Fetch(context.Background(), server.URL, Conditional{
		ETag:         `"v1"`,
		LastModified: "Mon, 02 Jan 2006 15:04:05 GMT",
	})
	require.NoError(t, err)

	assert.Equal(t, `"v1"`, gotETag)
	assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 GMT", gotModified)
	assert.True(t, result.NotModified)
	assert.Empty(t, result.Content)
	assert.Equal(t, `"v1"`, result.ETag)
}

func TestFetchRejectsNonPlaylistContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not a playlist</html>"))
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL, Conditional{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing #EXTM3U header")
}

func TestFetchRejectsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL, Conditional{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL, Conditional{})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(samplePlaylist))
	}))
	defer server.Close()

	result, err := newTestFetcher().Fetch(context.Background(), server.URL, Conditional{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, samplePlaylist, result.Content)
}

func TestIsRetryableError(t *testing.T) {
	f := newTestFetcher()

	assert.False(t, f.isRetryableError(nil))
	assert.False(t, f.isRetryableError(validatePlaylist([]byte("<html>"))))
	assert.True(t, f.isRetryableError(assert.AnError))
}
