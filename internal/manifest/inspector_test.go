package manifest

import "testing"

func TestInspectMasterPlaylist(t *testing.T) {
	body := `#EXTM3U
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=2500000,RESOLUTION=1280x720
mid/index.m3u8
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=6000000,RESOLUTION=1920x1080
high/index.m3u8
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=900000,RESOLUTION=640x360
low/index.m3u8`

	info := New().Inspect(body)

	if info.BitrateKbps != 6000 {
		t.Errorf("expected highest-bandwidth variant 6000 kbps, got %d", info.BitrateKbps)
	}
	if info.Resolution != "1920x1080" {
		t.Errorf("expected 1920x1080, got %q", info.Resolution)
	}
}

func TestInspectFreeTextResolutionHints(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		resolution string
		bitrate    int
	}{
		{
			name:       "explicit WxH token",
			body:       "#EXTM3U\nsegments/stream_1920x1080_0001.ts",
			resolution: "1920x1080",
			bitrate:    5000,
		},
		{
			name:       "p-suffixed shorthand",
			body:       "#EXTM3U\nsegments/stream_720p_0001.ts",
			resolution: "1280x720",
			bitrate:    2800,
		},
		{
			name:       "shorthand 480p",
			body:       "#EXTM3U\nlive_480p.ts",
			resolution: "854x480",
			bitrate:    1200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := New().Inspect(tt.body)
			if info.Resolution != tt.resolution {
				t.Errorf("resolution = %q, want %q", info.Resolution, tt.resolution)
			}
			if info.BitrateKbps != tt.bitrate {
				t.Errorf("assumed bitrate = %d, want %d", info.BitrateKbps, tt.bitrate)
			}
		})
	}
}

func TestInspectSparseManifestFallsBackToDefaults(t *testing.T) {
	body := `#EXTM3U
#EXT-X-TARGETDURATION:6
#EXTINF:6.0,
segment0001.ts
#EXTINF:6.0,
segment0002.ts`

	info := New().Inspect(body)

	if info.BitrateKbps != DefaultBitrateKbps {
		t.Errorf("expected default bitrate %d, got %d", DefaultBitrateKbps, info.BitrateKbps)
	}
	if info.Resolution != DefaultResolution {
		t.Errorf("expected default resolution %q, got %q", DefaultResolution, info.Resolution)
	}
}

func TestInspectBandwidthWithoutResolution(t *testing.T) {
	body := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1800000
variant/index.m3u8`

	info := New().Inspect(body)

	if info.BitrateKbps != 1800 {
		t.Errorf("expected 1800 kbps, got %d", info.BitrateKbps)
	}
	if info.Resolution != DefaultResolution {
		t.Errorf("expected default resolution, got %q", info.Resolution)
	}
}

func TestVerticalHeight(t *testing.T) {
	tests := []struct {
		resolution string
		expected   int
	}{
		{"1920x1080", 1080},
		{"640x360", 360},
		{"unknown", 0},
		{"", 0},
		{"1920x", 0},
	}

	for _, tt := range tests {
		if got := VerticalHeight(tt.resolution); got != tt.expected {
			t.Errorf("VerticalHeight(%q) = %d, want %d", tt.resolution, got, tt.expected)
		}
	}
}
