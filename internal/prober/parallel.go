package prober

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/lcastelli/streampulse/internal/models"
)

// BatchProber runs probes for a channel batch through a bounded worker pool.
// Concurrency is capped and requests are rate limited so a test cycle never
// fans out unbounded against third-party servers.
type BatchProber struct {
	prober      *Prober
	concurrency int
	limiter     *rate.Limiter
}

// NewBatch creates a batch prober. requestsPerSecond <= 0 disables rate
// limiting.
func NewBatch(p *Prober, concurrency int, requestsPerSecond float64) *BatchProber {
	if concurrency <= 0 {
		concurrency = 5
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &BatchProber{
		prober:      p,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProbeBatch probes the given channels and streams results as they complete.
// Results are order-insensitive; each is a complete, independent unit. On
// cancellation the remaining channels are skipped and the channel is closed
// without partial results.
func (b *BatchProber) ProbeBatch(ctx context.Context, channels []models.Channel) <-chan models.StreamTestResult {
	results := make(chan models.StreamTestResult, len(channels))
	jobs := make(chan models.Channel, len(channels))

	for _, ch := range channels {
		jobs <- ch
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ch := range jobs {
				if err := b.limiter.Wait(ctx); err != nil {
					return
				}
				results <- b.prober.Probe(ctx, ch)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// ProbeBatchSync probes the given channels and waits for all to complete
func (b *BatchProber) ProbeBatchSync(ctx context.Context, channels []models.Channel) []models.StreamTestResult {
	var results []models.StreamTestResult
	for result := range b.ProbeBatch(ctx, channels) {
		results = append(results, result)
	}
	return results
}

// Concurrency returns the worker pool size
func (b *BatchProber) Concurrency() int {
	return b.concurrency
}
