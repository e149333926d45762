package memory

import (
	"context"
	"time"

	"myforum/internal/core/apperr"
	"myforum/internal/core/post"
	postPort "myforum/internal/ports/post"

	"github.com/gofrs/uuid"
)

type LikeRepository struct{ s *Store }

// Save inserts the like unless the (user, post) slot is taken. The check and
// the insert share one lock, so concurrent callers cannot both succeed.
func (r *LikeRepository) Save(ctx context.Context, l *post.LikedPost) (*post.LikedPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[l.PostID]; !ok {
		return nil, apperr.NotFound("post", l.PostID.String())
	}
	bucket := r.s.likes[l.PostID]
	if bucket == nil {
		bucket = map[uuid.UUID]*post.LikedPost{}
		r.s.likes[l.PostID] = bucket
	}
	if _, taken := bucket[l.UserID]; taken {
		return nil, apperr.Conflict("liked post", "user already liked this post")
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.Must(uuid.NewV4())
	}
	bucket[l.UserID] = likeCopy(l)
	return l, nil
}

func (r *LikeRepository) Remove(ctx context.Context, l *post.LikedPost) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, bucket := range r.s.likes {
		for userID, existing := range bucket {
			if existing.ID == l.ID {
				delete(bucket, userID)
				return nil
			}
		}
	}
	return apperr.NotFound("liked post", l.ID.String())
}

func (r *LikeRepository) FindByID(ctx context.Context, id uuid.UUID) (*post.LikedPost, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, bucket := range r.s.likes {
		for _, l := range bucket {
			if l.ID == id {
				return likeCopy(l), nil
			}
		}
	}
	return nil, apperr.NotFound("liked post", id.String())
}

func (r *LikeRepository) FindBy(ctx context.Context, criteria postPort.LikeCriteria) ([]*post.LikedPost, error) {
	var likes []*post.LikedPost
	r.each(func(l *post.LikedPost) {
		if criteria.PostID != uuid.Nil && l.PostID != criteria.PostID {
			return
		}
		if criteria.UserID != uuid.Nil && l.UserID != criteria.UserID {
			return
		}
		likes = append(likes, likeCopy(l))
	})
	return likes, nil
}

func (r *LikeRepository) FindOne(ctx context.Context, postID, userID uuid.UUID) (*post.LikedPost, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if l, ok := r.s.likes[postID][userID]; ok {
		return likeCopy(l), nil
	}
	return nil, apperr.NotFound("liked post", postID.String()+"/"+userID.String())
}

func (r *LikeRepository) LikedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	liked := map[uuid.UUID]bool{}
	for _, id := range postIDs {
		if _, ok := r.s.likes[id][userID]; ok {
			liked[id] = true
		}
	}
	return liked, nil
}

func (r *LikeRepository) CountByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[uuid.UUID]int64, len(postIDs))
	for _, id := range postIDs {
		if n := len(r.s.likes[id]); n > 0 {
			counts[id] = int64(n)
		}
	}
	return counts, nil
}

func (r *LikeRepository) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.CountForUserSince(ctx, userID, time.Time{})
}

func (r *LikeRepository) CountForUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	r.each(func(l *post.LikedPost) {
		if l.UserID == userID && !l.CreatedAt.Before(since) {
			n++
		}
	})
	return n, nil
}

func (r *LikeRepository) CountGroupedByWeekSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	weeks := map[string]int64{}
	r.each(func(l *post.LikedPost) {
		if !l.CreatedAt.Before(since) {
			weeks[post.WeekKey(l.CreatedAt)]++
		}
	})
	return weeks, nil
}

func (r *LikeRepository) each(fn func(*post.LikedPost)) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, bucket := range r.s.likes {
		for _, l := range bucket {
			fn(l)
		}
	}
}
