package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcastelli/streampulse/internal/config"
	"github.com/lcastelli/streampulse/internal/fetcher"
	"github.com/lcastelli/streampulse/internal/filter"
	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/models"
	"github.com/lcastelli/streampulse/internal/parser"
	"github.com/lcastelli/streampulse/internal/prober"
	"github.com/lcastelli/streampulse/internal/store"
	testhelpers "github.com/lcastelli/streampulse/internal/testing"
)

const testPlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="news1" group-title="News",News One
http://example.com/streams/news1.m3u8
#EXTINF:-1 tvg-id="sports1" group-title="Sports",Sports Hub
http://example.com/streams/sports1.m3u8
`

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{MinLevel: logger.LevelError})
}

func newTestIngestor(t *testing.T, f *fetcher.Fetcher) (*Ingestor, *store.Store) {
	t.Helper()
	st := store.New(testhelpers.TestDB(t))
	return NewIngestor(st, f, filter.NewManager(), quietLogger()), st
}

func TestIngestContentPopulatesCatalog(t *testing.T) {
	ing, st := newTestIngestor(t, nil)

	report, err := ing.IngestContent(context.Background(), "iptv-org", "/streams/us.m3u", testPlaylist, IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Parsed)
	assert.Equal(t, 2, report.Added)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 0, report.Removed)

	channels, err := st.ChannelsBySource("iptv-org")
	require.NoError(t, err)
	require.Len(t, channels, 2)

	updates, err := st.ListSourceUpdates("iptv-org", 0)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, 2, updates[0].ChannelsAdded)
}

func TestIngestContentDeactivatesMissingChannels(t *testing.T) {
	ing, st := newTestIngestor(t, nil)

	_, err := ing.IngestContent(context.Background(), "iptv-org", "/streams/us.m3u", testPlaylist, IngestOptions{})
	require.NoError(t, err)

	shrunk := `#EXTM3U
#EXTINF:-1 tvg-id="news1" group-title="News",News One
http://example.com/streams/news1.m3u8
`
	report, err := ing.IngestContent(context.Background(), "iptv-org", "/streams/us.m3u", shrunk, IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Removed)

	dropped, err := st.GetChannel(parser.ChannelID("http://example.com/streams/sports1.m3u8"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, dropped.Status)

	// Repeating the shrunk playlist must be a no-op
	report, err = ing.IngestContent(context.Background(), "iptv-org", "/streams/us.m3u", shrunk, IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 0, report.Removed)
}

func TestIngestContentDryRunWritesNothing(t *testing.T) {
	ing, st := newTestIngestor(t, nil)

	report, err := ing.IngestContent(context.Background(), "iptv-org", "/streams/us.m3u", testPlaylist, IngestOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.Added)

	testhelpers.AssertCount(t, st.DB(), &models.Channel{}, 0, "dry run must not write channels")
	testhelpers.AssertCount(t, st.DB(), &models.SourceUpdate{}, 0, "dry run must not write audit records")
}

func TestIngestContentAppliesFilters(t *testing.T) {
	filters := filter.NewManager()
	require.NoError(t, filters.LoadFromConfig(config.FilterConfig{
		Category: config.FilterDef{ExcludePatterns: []string{"^sports$"}},
	}))

	st := store.New(testhelpers.TestDB(t))
	ing := NewIngestor(st, nil, filters, quietLogger())

	report, err := ing.IngestContent(context.Background(), "iptv-org", "/streams/us.m3u", testPlaylist, IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Parsed)
	assert.Equal(t, 1, report.Filtered)
	assert.Equal(t, 1, report.Added)
}

func TestIngestSourceStoresCacheValidators(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(testPlaylist))
	}))
	defer server.Close()

	f := fetcher.New(fetcher.Config{TimeoutSeconds: 5, Logger: quietLogger()})
	ing, st := newTestIngestor(t, f)

	src := config.SourceConfig{Name: "iptv-org", URL: server.URL + "/streams/us.m3u", Enabled: true}

	report, err := ing.IngestSource(context.Background(), src, IngestOptions{})
	require.NoError(t, err)
	assert.False(t, report.NotModified)
	assert.Equal(t, 2, report.Added)

	tracked, err := st.GetTrackedSource("iptv-org")
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, tracked.ETag)

	// Second run replays the validator and short-circuits on 304
	report, err = ing.IngestSource(context.Background(), src, IngestOptions{})
	require.NoError(t, err)
	assert.True(t, report.NotModified)
	assert.Equal(t, 0, report.Parsed)
	assert.Equal(t, 2, requests)
}

func TestTestCycleUpdatesCatalog(t *testing.T) {
	streamServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer streamServer.Close()

	st := store.New(testhelpers.TestDB(t))
	good := testhelpers.CreateChannel(st.DB(),
		testhelpers.WithID("ch_good"),
		testhelpers.WithURL(streamServer.URL+"/live/stream.ts"))
	bad := testhelpers.CreateChannel(st.DB(),
		testhelpers.WithID("ch_bad"),
		testhelpers.WithURL("http://127.0.0.1:1/dead.ts"))

	p := prober.New(prober.Config{
		Client:  streamServer.Client(),
		Timeout: 2 * time.Second,
		Region:  "us-east",
		Logger:  quietLogger(),
	})
	cycle := NewTestCycle(st, prober.NewBatch(p, 2, 0), quietLogger())

	report, err := cycle.Run(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Probed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	gotGood, err := st.GetChannel(good.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, gotGood.Status)
	require.NotNil(t, gotGood.LastTested)

	gotBad, err := st.GetChannel(bad.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, gotBad.Status)

	goodMetrics, err := st.GetMetrics(good.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, goodMetrics.UptimePercentage, 0.001)

	results, err := st.ResultsForChannel(good.ID, 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestTestCycleEmptyCatalog(t *testing.T) {
	st := store.New(testhelpers.TestDB(t))
	p := prober.New(prober.Config{Timeout: time.Second, Logger: quietLogger()})
	cycle := NewTestCycle(st, prober.NewBatch(p, 2, 0), quietLogger())

	report, err := cycle.Run(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Probed)
}

func TestTestCycleScopedToSource(t *testing.T) {
	streamServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer streamServer.Close()

	st := store.New(testhelpers.TestDB(t))
	testhelpers.CreateChannel(st.DB(),
		testhelpers.WithID("ch_mine"),
		testhelpers.WithURL(streamServer.URL+"/live/a.ts"),
		testhelpers.WithSource("iptv-org"))
	testhelpers.CreateChannel(st.DB(),
		testhelpers.WithID("ch_other"),
		testhelpers.WithURL(streamServer.URL+"/live/b.ts"),
		testhelpers.WithSource("free-tv"))

	p := prober.New(prober.Config{
		Client:  streamServer.Client(),
		Timeout: 2 * time.Second,
		Logger:  quietLogger(),
	})
	cycle := NewTestCycle(st, prober.NewBatch(p, 2, 0), quietLogger())

	report, err := cycle.Run(context.Background(), "iptv-org", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Probed)

	other, err := st.GetChannel("ch_other")
	require.NoError(t, err)
	assert.Nil(t, other.LastTested)
}
