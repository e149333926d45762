package memory

import (
	"context"
	"sort"

	"myforum/internal/core/apperr"
	"myforum/internal/core/post"
	postPort "myforum/internal/ports/post"

	"github.com/gofrs/uuid"
)

type PostRepository struct{ s *Store }

func (r *PostRepository) Save(ctx context.Context, p *post.Post) (*post.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.UserID == uuid.Nil {
		return nil, post.ErrAuthorRequired
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.Must(uuid.NewV4())
	}
	cp := *p
	cp.Comments, cp.Likes, cp.User = nil, nil, nil
	r.s.posts[p.ID] = &cp
	return p, nil
}

// Remove deletes the post and both dependent buckets in one critical section.
func (r *PostRepository) Remove(ctx context.Context, p *post.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[p.ID]; !ok {
		return apperr.NotFound("post", p.ID.String())
	}
	delete(r.s.posts, p.ID)
	delete(r.s.comments, p.ID)
	delete(r.s.likes, p.ID)
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, apperr.NotFound("post", id.String())
	}
	return r.s.postCopy(p), nil
}

func (r *PostRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	posts := make([]*post.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.posts[id]; ok {
			posts = append(posts, r.s.postCopy(p))
		}
	}
	return posts, nil
}

func (r *PostRepository) FindBy(ctx context.Context, criteria postPort.PostCriteria) ([]*post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var posts []*post.Post
	for _, p := range r.s.orderedPosts() {
		if criteria.AuthorID != uuid.Nil && p.UserID != criteria.AuthorID {
			continue
		}
		posts = append(posts, r.s.postCopy(p))
	}
	return posts, nil
}

func (r *PostRepository) FindAllOrderedByDateDescending(ctx context.Context, offset, limit int) ([]*post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ordered := r.s.orderedPosts()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ordered) {
		return []*post.Post{}, nil
	}
	end := len(ordered)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	posts := make([]*post.Post, 0, end-offset)
	for _, p := range ordered[offset:end] {
		posts = append(posts, r.s.postCopy(p))
	}
	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.posts)), nil
}

// orderedPosts sorts newest first, ties by id descending. Caller holds the lock.
func (s *Store) orderedPosts() []*post.Post {
	ordered := make([]*post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID.String() > ordered[j].ID.String()
	})
	return ordered
}
