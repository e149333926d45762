package postapp

import (
	"context"

	postEntity "myforum/internal/core/post"
	"myforum/internal/core/user"
	postPort "myforum/internal/ports/post"

	"github.com/gofrs/uuid"
	"golang.org/x/sync/errgroup"
)

// Transformer تبدیل موجودیت‌ها به مدل نمایشی وابسته به بیننده
type Transformer struct {
	Likes    postPort.LikeRepository
	Comments postPort.CommentRepository
}

func NewTransformer(likes postPort.LikeRepository, comments postPort.CommentRepository) *Transformer {
	return &Transformer{Likes: likes, Comments: comments}
}

// Posts builds views for a page of posts with three batched lookups: like
// counts, comment counts and, for a present viewer, the viewer's likes.
func (t *Transformer) Posts(ctx context.Context, posts []*postEntity.Post, viewer *user.Viewer) ([]*postPort.PostView, error) {
	views := make([]*postPort.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	var likeCounts, commentCounts map[uuid.UUID]int64
	liked := map[uuid.UUID]bool{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likeCounts, err = t.Likes.CountByPosts(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		commentCounts, err = t.Comments.CountByPosts(gctx, ids)
		return err
	})
	if viewer.Present() {
		g.Go(func() error {
			var err error
			liked, err = t.Likes.LikedPostIDs(gctx, viewer.ID, ids)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range posts {
		v := ToPostView(p)
		v.Likes = likeCounts[p.ID]
		v.Comments = commentCounts[p.ID]
		v.LikedByViewer = liked[p.ID]
		views = append(views, v)
	}
	return views, nil
}

func (t *Transformer) Post(ctx context.Context, p *postEntity.Post, viewer *user.Viewer) (*postPort.PostView, error) {
	views, err := t.Posts(ctx, []*postEntity.Post{p}, viewer)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (t *Transformer) CommentList(comments []*postEntity.Comment, viewer *user.Viewer) []*postPort.CommentView {
	views := make([]*postPort.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, ToCommentView(c, viewer))
	}
	return views
}

// ToPostView maps the viewer-independent fields of a post.
func ToPostView(p *postEntity.Post) *postPort.PostView {
	v := &postPort.PostView{
		ID:        p.ID.String(),
		Title:     p.Title,
		Text:      p.Text,
		AuthorID:  p.UserID.String(),
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
	}
	if p.User != nil {
		v.AuthorAvatar = p.User.Avatar
	}
	return v
}

func ToCommentView(c *postEntity.Comment, viewer *user.Viewer) *postPort.CommentView {
	v := &postPort.CommentView{
		ID:        c.ID.String(),
		Text:      c.Text,
		AuthorID:  c.UserID.String(),
		CreatedAt: c.CreatedAt,
		ByViewer:  viewer.Is(c.UserID),
	}
	if c.User != nil {
		v.AuthorAvatar = c.User.Avatar
	}
	return v
}
