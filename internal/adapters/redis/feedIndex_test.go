package redis

import (
	"context"
	"testing"
	"time"

	feedPort "myforum/internal/ports/feed"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *FeedIndexRedis {
	t.Helper()
	idx, _ := newIndexWithServer(t)
	return idx
}

func newIndexWithServer(t *testing.T) (*FeedIndexRedis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFeedIndexRedis(client), mr
}

func TestFeedIndexOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	older := uuid.Must(uuid.NewV4())
	newer := uuid.Must(uuid.NewV4())
	tieLow := uuid.FromStringOrNil("00000000-0000-4000-8000-000000000001")
	tieHigh := uuid.FromStringOrNil("ffffffff-0000-4000-8000-000000000001")

	require.NoError(t, idx.Add(ctx,
		feedPort.Entry{PostID: older, CreatedAt: base},
		feedPort.Entry{PostID: newer, CreatedAt: base.Add(2 * time.Minute)},
		feedPort.Entry{PostID: tieLow, CreatedAt: base.Add(time.Minute)},
		feedPort.Entry{PostID: tieHigh, CreatedAt: base.Add(time.Minute)},
	))

	ids, total, err := idx.Page(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, []uuid.UUID{newer, tieHigh, tieLow, older}, ids)

	ids, _, err = idx.Page(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{tieHigh, tieLow}, ids)
}

func TestFeedIndexRemoveAndCount(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t)
	a := uuid.Must(uuid.NewV4())
	b := uuid.Must(uuid.NewV4())
	now := time.Now()

	require.NoError(t, idx.Add(ctx, feedPort.Entry{PostID: a, CreatedAt: now}, feedPort.Entry{PostID: b, CreatedAt: now.Add(time.Second)}))
	require.NoError(t, idx.Remove(ctx, b))

	ids, total, err := idx.Page(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []uuid.UUID{a}, ids)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStagingStaysHiddenUntilCommit(t *testing.T) {
	ctx := context.Background()
	idx, mr := newIndexWithServer(t)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	gone := uuid.Must(uuid.NewV4())
	kept := uuid.Must(uuid.NewV4())
	fresh := uuid.Must(uuid.NewV4())
	require.NoError(t, idx.Add(ctx, feedPort.Entry{PostID: gone, CreatedAt: base}))

	st, err := idx.Stage(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Add(ctx, feedPort.Entry{PostID: kept, CreatedAt: base}))

	// readers keep seeing the live set while the rebuild runs
	ids, total, err := idx.Page(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []uuid.UUID{gone}, ids)

	require.NoError(t, st.Add(ctx, feedPort.Entry{PostID: fresh, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, st.Commit(ctx))

	ids, total, err = idx.Page(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []uuid.UUID{fresh, kept}, ids)
	assert.Zero(t, mr.TTL(idx.Key), "live key must not inherit the staging expiry")
	assert.Equal(t, []string{idx.Key}, mr.Keys())
}

func TestEmptyStagingClearsIndex(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t)
	require.NoError(t, idx.Add(ctx, feedPort.Entry{PostID: uuid.Must(uuid.NewV4()), CreatedAt: time.Now()}))

	st, err := idx.Stage(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Commit(ctx))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDiscardDropsStagingSet(t *testing.T) {
	ctx := context.Background()
	idx, mr := newIndexWithServer(t)
	live := uuid.Must(uuid.NewV4())
	require.NoError(t, idx.Add(ctx, feedPort.Entry{PostID: live, CreatedAt: time.Now()}))

	st, err := idx.Stage(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Add(ctx, feedPort.Entry{PostID: uuid.Must(uuid.NewV4()), CreatedAt: time.Now()}))
	require.NoError(t, st.Discard(ctx))

	assert.Equal(t, []string{idx.Key}, mr.Keys())
	ids, _, err := idx.Page(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{live}, ids)
}

func TestFeedIndexAddNothing(t *testing.T) {
	assert.NoError(t, newIndex(t).Add(context.Background()))
}
