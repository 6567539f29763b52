// Package tuner implements the length tuner: a long-lived task that,
// on each interval, nudges the command length from the reward trend's
// verdict. Scope is never touched here — it stays static for the life of
// the process.
package tuner

import (
	"context"
	"time"

	"github.com/coriolis-dev/shdrift/internal/settings"
	"github.com/coriolis-dev/shdrift/internal/trend"
)

// DefaultInterval is how often the tuner consults the trend verdict.
const DefaultInterval = 1500 * time.Millisecond

// Run consults tr's verdict every interval and applies it to s as a +1/0/-1
// delta on the synthesis length, until ctx is canceled.
func Run(ctx context.Context, s *settings.Settings, tr *trend.Tracker, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.AdjustLength(tr.Verdict())
		}
	}
}
