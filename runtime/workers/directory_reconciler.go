package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/relay"
)

const DefaultReconcileInterval = 5 * time.Minute

// DirectoryReconciler periodically reloads the member-channel cache
// from the store. The cache is updated incrementally on every flow, so
// this worker only matters when several processes share one store or
// when an incremental update was lost; running it is optional.
type DirectoryReconciler struct {
	log       *slog.Logger
	directory *relay.Directory
	interval  time.Duration
}

func NewDirectoryReconciler(log *slog.Logger, directory *relay.Directory, interval time.Duration) *DirectoryReconciler {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &DirectoryReconciler{log: log, directory: directory, interval: interval}
}

// Run reloads on every tick. A failed reload keeps the previous cache
// and is retried on the next tick, so errors are logged, not returned.
func (w *DirectoryReconciler) Run(ctx context.Context) error {
	w.log.Info("Starting directory reconciler", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.directory.Refresh(ctx); err != nil {
				w.log.Warn("Directory reconcile failed", "error", err)
			}
		}
	}
}
