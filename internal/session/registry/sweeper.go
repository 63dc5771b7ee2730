package registry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically evicts idle sessions from a Registry.
type Sweeper struct {
	Registry *Registry
	Interval time.Duration
	Log      zerolog.Logger
}

// Start launches the sweep loop as a tracked registry goroutine. It returns
// immediately; the loop runs until ctx is canceled.
func (sw *Sweeper) Start(ctx context.Context) {
	interval := sw.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	sw.Registry.Go(func() {
		sw.run(ctx, interval)
	})
}

func (sw *Sweeper) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sw.SweepOnce()
		}
	}
}

// SweepOnce performs exactly one eviction pass. Exported for deterministic
// unit testing without waiting on the ticker.
func (sw *Sweeper) SweepOnce() {
	n := sw.Registry.EvictIdle(time.Now().UnixMilli())
	if n > 0 {
		sw.Log.Info().Int("evicted", n).Msg("evicted idle sessions")
	}
}
