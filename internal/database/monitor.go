package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joel-cespedes/petit/internal/metrics"
)

// MonitorInterval is how often the running service samples its pool.
const MonitorInterval = 30 * time.Second

// Monitor pings db every interval until ctx is done, publishing
// reachability and pool usage as gauges.  Transitions between reachable
// and unreachable are logged once each.  It always returns nil on
// cancellation so it can share an errgroup with the HTTP server.
func Monitor(ctx context.Context, db *sqlx.DB, every time.Duration) error {
	tick := time.NewTicker(every)
	defer tick.Stop()

	up := sample(ctx, db, every, true)
	for {
		select {
		case <-ctx.Done():
			zap.S().Infow("database monitor stopped", "open", db.Stats().OpenConnections)
			return nil
		case <-tick.C:
			up = sample(ctx, db, every, up)
		}
	}
}

func sample(ctx context.Context, db *sqlx.DB, timeout time.Duration, wasUp bool) bool {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	err := db.PingContext(pctx)
	cancel()

	up := err == nil
	if up {
		metrics.DBUp.Set(1)
	} else {
		metrics.DBUp.Set(0)
	}
	switch {
	case wasUp && !up && ctx.Err() == nil:
		zap.S().Warnw("database unreachable", "err", err)
	case !wasUp && up:
		zap.S().Infow("database reachable again")
	}

	s := db.Stats()
	metrics.DBConnections.WithLabelValues("in_use").Set(float64(s.InUse))
	metrics.DBConnections.WithLabelValues("idle").Set(float64(s.Idle))
	return up
}
