package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FeedSyncer rebuilds the feed index when it no longer matches the database.
type FeedSyncer interface {
	SyncFeedIndex(ctx context.Context, force bool) (bool, error)
}

// FeedSyncWorker بررسی دوره‌ای ایندکس فید و بازسازی آن در صورت نیاز
type FeedSyncWorker struct {
	Syncer   FeedSyncer
	Interval time.Duration
	Logger   *zap.Logger
}

func NewFeedSyncWorker(syncer FeedSyncer, interval time.Duration, logger *zap.Logger) *FeedSyncWorker {
	return &FeedSyncWorker{
		Syncer:   syncer,
		Interval: interval,
		Logger:   logger,
	}
}

// Run checks the index every Interval until ctx is cancelled. A failed
// check is logged and retried on the next tick.
func (w *FeedSyncWorker) Run(ctx context.Context) error {
	if w.Interval <= 0 {
		return nil
	}
	w.Logger.Info("🚀 Feed sync worker started", zap.Duration("Interval", w.Interval))

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("🛑 Feed sync worker stopped")
			return nil
		case <-ticker.C:
			rebuilt, err := w.Syncer.SyncFeedIndex(ctx, false)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.Logger.Error("❌ Feed sync failed", zap.Error(err))
				continue
			}
			if rebuilt {
				w.Logger.Info("🔄 Feed index rebuilt")
			}
		}
	}
}
