package memory

import (
	"context"
	"sort"

	"myforum/internal/core/apperr"
	"myforum/internal/core/post"
	postPort "myforum/internal/ports/post"

	"github.com/gofrs/uuid"
)

type CommentRepository struct{ s *Store }

func (r *CommentRepository) Save(ctx context.Context, c *post.Comment) (*post.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[c.PostID]; !ok {
		return nil, apperr.NotFound("post", c.PostID.String())
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.Must(uuid.NewV4())
	}
	bucket := r.s.comments[c.PostID]
	if bucket == nil {
		bucket = map[uuid.UUID]*post.Comment{}
		r.s.comments[c.PostID] = bucket
	}
	cp := *c
	cp.Post, cp.User = nil, nil
	bucket[c.ID] = &cp
	return c, nil
}

func (r *CommentRepository) Remove(ctx context.Context, c *post.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, bucket := range r.s.comments {
		if _, ok := bucket[c.ID]; ok {
			delete(bucket, c.ID)
			return nil
		}
	}
	return apperr.NotFound("comment", c.ID.String())
}

func (r *CommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*post.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, bucket := range r.s.comments {
		if c, ok := bucket[id]; ok {
			return r.s.commentCopy(c), nil
		}
	}
	return nil, apperr.NotFound("comment", id.String())
}

// FindBy returns comments oldest first.
func (r *CommentRepository) FindBy(ctx context.Context, criteria postPort.CommentCriteria) ([]*post.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var comments []*post.Comment
	for postID, bucket := range r.s.comments {
		if criteria.PostID != uuid.Nil && postID != criteria.PostID {
			continue
		}
		for _, c := range bucket {
			if criteria.AuthorID != uuid.Nil && c.UserID != criteria.AuthorID {
				continue
			}
			comments = append(comments, r.s.commentCopy(c))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID.String() < comments[j].ID.String()
	})
	return comments, nil
}

func (r *CommentRepository) CountByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[uuid.UUID]int64, len(postIDs))
	for _, id := range postIDs {
		if n := len(r.s.comments[id]); n > 0 {
			counts[id] = int64(n)
		}
	}
	return counts, nil
}
