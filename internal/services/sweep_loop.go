package services

import (
	"context"
	"log/slog"
	"time"
)

// StartSweepLoop runs the expired-row sweep on a fixed cadence until done is
// closed. The cleanup endpoint can still trigger a sweep on demand.
func StartSweepLoop(svc *CleanupService, interval time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				result, err := svc.Sweep(context.Background())
				if err != nil {
					slog.Error("expiry sweep failed", "error", err)
					continue
				}
				if result.Codes+result.ResetTokens+result.Sessions+result.RateCounters > 0 {
					slog.Info("expiry sweep completed",
						"otps", result.Codes,
						"reset_tokens", result.ResetTokens,
						"sessions", result.Sessions,
						"rate_counters", result.RateCounters)
				}
			case <-done:
				return
			}
		}
	}()
}
