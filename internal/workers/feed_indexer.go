package workers

import (
	"context"
	"fmt"

	feedPort "myforum/internal/ports/feed"
	postPort "myforum/internal/ports/post"

	"go.uber.org/zap"
)

const DefaultBatchSize = 500

// FeedIndexer بازسازی ایندکس فید از روی دیتابیس
type FeedIndexer struct {
	PostRepo  postPort.PostRepository
	Index     feedPort.FeedIndex
	BatchSize int // تعداد پست‌ها در هر batch برای Redis
	Logger    *zap.Logger
}

func NewFeedIndexer(postRepo postPort.PostRepository, index feedPort.FeedIndex, batchSize int, logger *zap.Logger) *FeedIndexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &FeedIndexer{
		PostRepo:  postRepo,
		Index:     index,
		BatchSize: batchSize,
		Logger:    logger,
	}
}

// Rebuild refills the index from every stored post. Entries go to a staging
// set that replaces the live index only once complete, so readers never see
// a partial feed. Posts created while a rebuild runs are picked up by the
// next sync.
func (w *FeedIndexer) Rebuild(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	w.Logger.Info("🚀 Feed reindex started", zap.Int("BatchSize", w.BatchSize))

	staging, err := w.Index.Stage(ctx)
	if err != nil {
		return 0, fmt.Errorf("stage feed index: %w", err)
	}

	indexed, err := w.fill(ctx, staging)
	if err != nil {
		if discardErr := staging.Discard(context.Background()); discardErr != nil {
			w.Logger.Warn("⚠️ could not discard staging index", zap.Error(discardErr))
		}
		return indexed, err
	}
	if err := staging.Commit(ctx); err != nil {
		return indexed, fmt.Errorf("commit feed index: %w", err)
	}

	w.Logger.Info("✅ Feed reindex finished", zap.Int("Indexed", indexed))
	return indexed, nil
}

func (w *FeedIndexer) fill(ctx context.Context, staging feedPort.Staging) (int, error) {
	indexed := 0
	for offset := 0; ; offset += w.BatchSize {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}

		posts, err := w.PostRepo.FindAllOrderedByDateDescending(ctx, offset, w.BatchSize)
		if err != nil {
			return indexed, fmt.Errorf("load posts at offset %d: %w", offset, err)
		}
		if len(posts) == 0 {
			return indexed, nil
		}

		entries := make([]feedPort.Entry, 0, len(posts))
		for _, p := range posts {
			entries = append(entries, feedPort.Entry{PostID: p.ID, CreatedAt: p.CreatedAt})
		}
		if err := staging.Add(ctx, entries...); err != nil {
			return indexed, fmt.Errorf("add batch at offset %d: %w", offset, err)
		}
		indexed += len(entries)

		w.Logger.Info("📦 Indexed batch", zap.Int("From", offset), zap.Int("Count", len(entries)))

		if len(posts) < w.BatchSize {
			return indexed, nil
		}
	}
}
