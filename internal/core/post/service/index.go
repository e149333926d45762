package postapp

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// indexedPage reads a feed page from the index. It reports false when no
// index is configured, a write to it has failed since the last rebuild, it
// is unreachable, or its size differs from the number of stored posts.
func (s *PostService) indexedPage(ctx context.Context, offset, limit int) ([]uuid.UUID, int64, bool) {
	if s.FeedIndex == nil || s.indexStale.Load() {
		return nil, 0, false
	}

	ids, total, err := s.FeedIndex.Page(ctx, int64(offset), int64(limit))
	if err != nil {
		s.logger.Warn("feed index unavailable, reading from database", zap.Error(err))
		return nil, 0, false
	}

	stored, err := s.PostRepository.Count(ctx)
	if err != nil {
		return nil, 0, false
	}
	if stored != total {
		s.logger.Debug("feed index out of step with database",
			zap.Int64("indexed", total), zap.Int64("stored", stored))
		return nil, 0, false
	}
	return ids, total, true
}

// IndexStale reports whether a feed index write failed since the last rebuild.
func (s *PostService) IndexStale() bool {
	return s.indexStale.Load()
}

func (s *PostService) markIndexStale(msg string, postID uuid.UUID, err error) {
	s.indexStale.Store(true)
	s.logger.Warn(msg, zap.String("postID", postID.String()), zap.Error(err))
}

// SyncFeedIndex همگام‌سازی ایندکس فید با دیتابیس
//
// The index is rebuilt when force is set, when it was flagged stale, or when
// its size differs from the stored post count. The result reports whether a
// rebuild ran.
func (s *PostService) SyncFeedIndex(ctx context.Context, force bool) (bool, error) {
	if s.FeedIndex == nil || s.IndexRebuilder == nil {
		return false, nil
	}

	if !force && !s.indexStale.Load() {
		indexed, err := s.FeedIndex.Count(ctx)
		if err != nil {
			return false, fmt.Errorf("count feed index: %w", err)
		}
		stored, err := s.PostRepository.Count(ctx)
		if err != nil {
			return false, fmt.Errorf("count posts: %w", err)
		}
		if indexed == stored {
			return false, nil
		}
		s.logger.Info("feed index out of step, rebuilding",
			zap.Int64("indexed", indexed), zap.Int64("stored", stored))
	}

	// writes failing during the rebuild set the flag again
	s.indexStale.Store(false)
	if _, err := s.IndexRebuilder.Rebuild(ctx); err != nil {
		s.indexStale.Store(true)
		return true, fmt.Errorf("rebuild feed index: %w", err)
	}
	return true, nil
}
