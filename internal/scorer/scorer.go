package scorer

import (
	"math"
	"time"

	"github.com/lcastelli/streampulse/internal/manifest"
	"github.com/lcastelli/streampulse/internal/models"
)

// Weights for the composite score. They must sum to 1.0.
const (
	WeightUptime          = 0.40
	WeightStability       = 0.25
	WeightVideoQuality    = 0.20
	WeightGeoAvailability = 0.15
)

// Reference points the component scores are scaled against
const (
	// referenceBitrateKbps is the bitrate that earns a full stability score
	referenceBitrateKbps = 10000

	// referenceHeight is the vertical resolution that earns a full video
	// quality score
	referenceHeight = 1080

	// referenceRegions is the region count at which geo availability
	// saturates
	referenceRegions = 3
)

// Scorer derives quality metrics from accumulated probe results. Pure
// computation, no I/O; identical input always yields identical output.
type Scorer struct {
	now func() time.Time
}

// New creates a scorer
func New() *Scorer {
	return &Scorer{now: time.Now}
}

// NewWithClock creates a scorer with an injected clock, for tests
func NewWithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score combines a channel's probe history into one metrics record. An empty
// history yields all-zero metrics rather than an error.
func (s *Scorer) Score(channelID string, results []models.StreamTestResult) models.QualityMetrics {
	metrics := models.QualityMetrics{
		ChannelID:    channelID,
		CalculatedAt: s.now().UTC(),
	}

	if len(results) == 0 {
		return metrics
	}

	successes := 0
	bitrateSum := 0
	maxHeight := 0
	regions := make(map[string]struct{})

	for _, r := range results {
		if r.Status == models.TestSuccess {
			successes++
		}
		// Failed probes carry bitrate 0 and still count toward the average
		bitrateSum += r.BitrateKbps
		if h := manifest.VerticalHeight(r.Resolution); h > maxHeight {
			maxHeight = h
		}
		if r.Region != "" {
			regions[r.Region] = struct{}{}
		}
	}

	metrics.UptimePercentage = clamp(100 * float64(successes) / float64(len(results)))
	avgBitrate := float64(bitrateSum) / float64(len(results))
	metrics.StabilityScore = clampInt(round(100 * avgBitrate / referenceBitrateKbps))
	metrics.VideoQualityScore = clampInt(round(100 * float64(maxHeight) / referenceHeight))
	metrics.GeoAvailabilityScore = clampInt(round(100 * float64(len(regions)) / referenceRegions))

	metrics.OverallScore = clampInt(round(
		WeightUptime*metrics.UptimePercentage +
			WeightStability*float64(metrics.StabilityScore) +
			WeightVideoQuality*float64(metrics.VideoQualityScore) +
			WeightGeoAvailability*float64(metrics.GeoAvailabilityScore)))

	return metrics
}

// round is half-away-from-zero, applied everywhere for reproducibility
func round(v float64) int {
	return int(math.Round(v))
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
