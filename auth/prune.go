package auth

import (
	"context"
	"log/slog"
	"smartcalendar/metrics"
	"time"
)

type Pruner interface {
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}

// PruneJob returns a scheduler job that deletes expired tokens.
func PruneJob(ctx context.Context, p Pruner, now func() time.Time) func() {
	return func() {
		n, err := p.PruneExpired(ctx, now())
		if err != nil {
			slog.ErrorContext(ctx, "failed to prune expired tokens", "error", err)
			return
		}
		metrics.TokensPruned.Add(float64(n))
		slog.InfoContext(ctx, "pruned expired tokens", "rows", n)
	}
}
