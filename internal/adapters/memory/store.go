package memory

import (
	"sync"

	"myforum/internal/core/post"
	"myforum/internal/core/user"

	"github.com/gofrs/uuid"
)

// Store نگهداری همه موجودیت‌ها در حافظه
//
// Comments and likes live in per-post buckets so that removing a post drops
// its dependents by index. Likes are additionally keyed by user inside each
// bucket, which makes the one-like-per-(user, post) rule structural.
type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*user.User
	posts    map[uuid.UUID]*post.Post
	comments map[uuid.UUID]map[uuid.UUID]*post.Comment   // postID -> commentID
	likes    map[uuid.UUID]map[uuid.UUID]*post.LikedPost // postID -> userID
}

func NewStore() *Store {
	return &Store{
		users:    map[uuid.UUID]*user.User{},
		posts:    map[uuid.UUID]*post.Post{},
		comments: map[uuid.UUID]map[uuid.UUID]*post.Comment{},
		likes:    map[uuid.UUID]map[uuid.UUID]*post.LikedPost{},
	}
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Posts() *PostRepository       { return &PostRepository{s: s} }
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s: s} }
func (s *Store) Likes() *LikeRepository       { return &LikeRepository{s: s} }

// copies are handed out so callers cannot mutate stored state without a Save.

func (s *Store) userCopy(id uuid.UUID) *user.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func (s *Store) postCopy(p *post.Post) *post.Post {
	cp := *p
	cp.Comments = nil
	cp.Likes = nil
	cp.User = s.userCopy(p.UserID)
	return &cp
}

func (s *Store) commentCopy(c *post.Comment) *post.Comment {
	cp := *c
	cp.Post = nil
	cp.User = s.userCopy(c.UserID)
	return &cp
}

func likeCopy(l *post.LikedPost) *post.LikedPost {
	cp := *l
	cp.Post = nil
	cp.User = nil
	return &cp
}
