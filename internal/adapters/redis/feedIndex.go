package redis

import (
	"context"
	"fmt"
	"time"

	feedPort "myforum/internal/ports/feed"

	"github.com/go-redis/redis/v8"
	"github.com/gofrs/uuid"
)

const (
	FeedKey = "feed:posts"

	// stagingTTL expires staging sets left behind by a crashed rebuild.
	stagingTTL = time.Hour
)

// FeedIndexRedis فید سراسری در یک ZSET
//
// Score is the post creation time in Unix milliseconds and the member is the
// post id, so ZREVRANGE yields newest first with equal timestamps ordered by
// id descending, matching the SQL ordering.
type FeedIndexRedis struct {
	Client *redis.Client
	Key    string
}

func NewFeedIndexRedis(client *redis.Client) *FeedIndexRedis {
	return &FeedIndexRedis{
		Client: client,
		Key:    FeedKey,
	}
}

func (r *FeedIndexRedis) Add(ctx context.Context, entries ...feedPort.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := r.Client.ZAdd(ctx, r.Key, zMembers(entries)...).Err(); err != nil {
		return fmt.Errorf("zadd %s: %w", r.Key, err)
	}
	return nil
}

func (r *FeedIndexRedis) Remove(ctx context.Context, postID uuid.UUID) error {
	if err := r.Client.ZRem(ctx, r.Key, postID.String()).Err(); err != nil {
		return fmt.Errorf("zrem %s: %w", r.Key, err)
	}
	return nil
}

func (r *FeedIndexRedis) Page(ctx context.Context, offset, limit int64) ([]uuid.UUID, int64, error) {
	var (
		card  *redis.IntCmd
		slice *redis.StringSliceCmd
	)
	_, err := r.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		card = pipe.ZCard(ctx, r.Key)
		slice = pipe.ZRevRange(ctx, r.Key, offset, offset+limit-1)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", r.Key, err)
	}

	ids := make([]uuid.UUID, 0, len(slice.Val()))
	for _, member := range slice.Val() {
		id, err := uuid.FromString(member)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, card.Val(), nil
}

func (r *FeedIndexRedis) Count(ctx context.Context) (int64, error) {
	n, err := r.Client.ZCard(ctx, r.Key).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard %s: %w", r.Key, err)
	}
	return n, nil
}

// Stage ساخت ایندکس در یک کلید موقت تا خواننده‌ها ایندکس نیمه‌کاره نبینند
func (r *FeedIndexRedis) Stage(ctx context.Context) (feedPort.Staging, error) {
	return &feedStaging{
		client: r.Client,
		key:    r.Key,
		tmp:    r.Key + ":staging:" + uuid.Must(uuid.NewV4()).String(),
	}, nil
}

type feedStaging struct {
	client *redis.Client
	key    string
	tmp    string
}

func (st *feedStaging) Add(ctx context.Context, entries ...feedPort.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := st.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, st.tmp, zMembers(entries)...)
		pipe.Expire(ctx, st.tmp, stagingTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("zadd %s: %w", st.tmp, err)
	}
	return nil
}

// Commit renames the staging set over the live key. An empty staging set
// means there are no posts, so the live key is dropped.
func (st *feedStaging) Commit(ctx context.Context) error {
	n, err := st.client.Exists(ctx, st.tmp).Result()
	if err != nil {
		return fmt.Errorf("exists %s: %w", st.tmp, err)
	}
	if n == 0 {
		if err := st.client.Del(ctx, st.key).Err(); err != nil {
			return fmt.Errorf("del %s: %w", st.key, err)
		}
		return nil
	}

	_, err = st.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Rename(ctx, st.tmp, st.key)
		pipe.Persist(ctx, st.key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("rename %s to %s: %w", st.tmp, st.key, err)
	}
	return nil
}

func (st *feedStaging) Discard(ctx context.Context) error {
	if err := st.client.Del(ctx, st.tmp).Err(); err != nil {
		return fmt.Errorf("del %s: %w", st.tmp, err)
	}
	return nil
}

func zMembers(entries []feedPort.Entry) []*redis.Z {
	members := make([]*redis.Z, 0, len(entries))
	for _, e := range entries {
		members = append(members, &redis.Z{
			Score:  float64(e.CreatedAt.UnixMilli()),
			Member: e.PostID.String(),
		})
	}
	return members
}
