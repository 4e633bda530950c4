package server

import (
	"context"
	"time"

	"spice-market/utils"
)

// expirySweeper is anything that can close all due auctions in one pass
type expirySweeper interface {
	SweepExpired() (int, error)
}

// StartExpirySweeper periodically closes auctions past their deadline.
// The lazy close on every read and write already guarantees correctness;
// the sweep only makes closed-auction notifications prompt when nobody
// is polling an auction.
func StartExpirySweeper(ctx context.Context, svc expirySweeper, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				closed, err := svc.SweepExpired()
				if err != nil {
					utils.Error("expiry sweep failed", map[string]any{"error": err.Error()})
					continue
				}
				if closed > 0 {
					utils.Info("expiry sweep closed auctions", map[string]any{"closed": closed})
				}
			}
		}
	}()
}
