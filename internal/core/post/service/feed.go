package postapp

import (
	"context"

	postEntity "myforum/internal/core/post"
	"myforum/internal/core/user"
	postPort "myforum/internal/ports/post"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// ListFeed صفحه‌ای از فید سراسری، جدیدترین اول
//
// Pages are a best-effort snapshot: posts created or deleted between two page
// reads may shift items across page boundaries.
func (s *PostService) ListFeed(ctx context.Context, viewer *user.Viewer, page int) (*postPort.FeedPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * s.pageSize

	posts, total, err := s.feedPosts(ctx, offset, s.pageSize)
	if err != nil {
		return nil, err
	}

	items, err := s.Transformer.Posts(ctx, posts, viewer)
	if err != nil {
		return nil, err
	}

	return &postPort.FeedPage{
		Items:      items,
		Page:       page,
		PageSize:   s.pageSize,
		Total:      total,
		TotalPages: (total + int64(s.pageSize) - 1) / int64(s.pageSize),
	}, nil
}

// GetPostDetail پست به همراه کامنت‌ها، با پرچم‌های وابسته به بیننده
func (s *PostService) GetPostDetail(ctx context.Context, postID uuid.UUID, viewer *user.Viewer) (*postPort.PostDetail, error) {
	p, err := s.PostRepository.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	view, err := s.Transformer.Post(ctx, p, viewer)
	if err != nil {
		return nil, err
	}

	comments, err := s.CommentRepository.FindBy(ctx, postPort.CommentCriteria{PostID: p.ID})
	if err != nil {
		return nil, err
	}

	return &postPort.PostDetail{
		Post:     view,
		Comments: s.Transformer.CommentList(comments, viewer),
	}, nil
}

// feedPosts reads ordered ids from the feed index when it is usable and
// falls back to the database otherwise.
func (s *PostService) feedPosts(ctx context.Context, offset, limit int) ([]*postEntity.Post, int64, error) {
	if ids, total, ok := s.indexedPage(ctx, offset, limit); ok {
		posts, err := s.hydrate(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		return posts, total, nil
	}

	total, err := s.PostRepository.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	posts, err := s.PostRepository.FindAllOrderedByDateDescending(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// hydrate loads posts for ids keeping the index order. Ids whose post is
// gone are skipped.
func (s *PostService) hydrate(ctx context.Context, ids []uuid.UUID) ([]*postEntity.Post, error) {
	found, err := s.PostRepository.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*postEntity.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	posts := make([]*postEntity.Post, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			s.logger.Debug("indexed post not found", zap.String("postID", id.String()))
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}
