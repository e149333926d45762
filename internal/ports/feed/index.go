package feed

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
)

// FeedIndex نگهداری ترتیب فید بیرون از دیتابیس (مثلا Redis ZSET)
//
// The index only stores ids and creation times; posts are always hydrated
// from the database, which stays the source of truth.
type FeedIndex interface {
	Add(ctx context.Context, entries ...Entry) error
	Remove(ctx context.Context, postID uuid.UUID) error
	// Page returns ids newest first plus the total number of indexed posts.
	Page(ctx context.Context, offset, limit int64) ([]uuid.UUID, int64, error)
	Count(ctx context.Context) (int64, error)
	// Stage starts a full rebuild that stays invisible to Page until Commit.
	Stage(ctx context.Context) (Staging, error)
}

// Staging یک ایندکس موقت که در Commit جایگزین ایندکس اصلی می‌شود
type Staging interface {
	Add(ctx context.Context, entries ...Entry) error
	Commit(ctx context.Context) error
	Discard(ctx context.Context) error
}

type Entry struct {
	PostID    uuid.UUID
	CreatedAt time.Time
}
