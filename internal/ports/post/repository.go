package post

import (
	"context"
	"time"

	"myforum/internal/core/post"

	"github.com/gofrs/uuid"
)

// PostRepository پورت برای ذخیره‌سازی و بازیابی پست‌ها
type PostRepository interface {
	Save(ctx context.Context, p *post.Post) (*post.Post, error)
	// Remove deletes the post together with its comments and likes.
	Remove(ctx context.Context, p *post.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*post.Post, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*post.Post, error)
	FindBy(ctx context.Context, criteria PostCriteria) ([]*post.Post, error)
	// FindAllOrderedByDateDescending returns newest first, ties broken by id
	// descending. limit <= 0 returns everything after offset.
	FindAllOrderedByDateDescending(ctx context.Context, offset, limit int) ([]*post.Post, error)
	Count(ctx context.Context) (int64, error)
}

type PostCriteria struct {
	AuthorID uuid.UUID
}

type CommentRepository interface {
	Save(ctx context.Context, c *post.Comment) (*post.Comment, error)
	Remove(ctx context.Context, c *post.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*post.Comment, error)
	FindBy(ctx context.Context, criteria CommentCriteria) ([]*post.Comment, error)
	CountByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type CommentCriteria struct {
	PostID   uuid.UUID
	AuthorID uuid.UUID
}

// LikeRepository enforces one like per (user, post): Save returns an
// apperr.ConflictError when the pair already exists.
type LikeRepository interface {
	Save(ctx context.Context, l *post.LikedPost) (*post.LikedPost, error)
	Remove(ctx context.Context, l *post.LikedPost) error
	FindByID(ctx context.Context, id uuid.UUID) (*post.LikedPost, error)
	FindBy(ctx context.Context, criteria LikeCriteria) ([]*post.LikedPost, error)
	FindOne(ctx context.Context, postID, userID uuid.UUID) (*post.LikedPost, error)
	// LikedPostIDs reports which of postIDs the user has liked.
	LikedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	CountByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	CountForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountForUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	CountGroupedByWeekSince(ctx context.Context, since time.Time) (map[string]int64, error)
}

type LikeCriteria struct {
	PostID uuid.UUID
	UserID uuid.UUID
}

// DTOها برای UseCase
type PostView struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Text          string    `json:"text"`
	AuthorID      string    `json:"authorId"`
	AuthorAvatar  string    `json:"authorAvatar,omitempty"`
	Image         *string   `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	Likes         int64     `json:"likes"`
	Comments      int64     `json:"comments"`
	LikedByViewer bool      `json:"likedByViewer"`
}

type CommentView struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	AuthorID     string    `json:"authorId"`
	AuthorAvatar string    `json:"authorAvatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	ByViewer     bool      `json:"byViewer"`
}

type PostDetail struct {
	Post     *PostView      `json:"post"`
	Comments []*CommentView `json:"comments"`
}

type FeedPage struct {
	Items      []*PostView `json:"items"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	Total      int64       `json:"total"`
	TotalPages int64       `json:"totalPages"`
}

type LikeStats struct {
	Total    int64 `json:"total"`
	LastWeek int64 `json:"lastWeek"`
}
