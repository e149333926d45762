package postapp

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"myforum/internal/core/apperr"
	postEntity "myforum/internal/core/post"
	"myforum/internal/core/user"
	feedPort "myforum/internal/ports/feed"
	postPort "myforum/internal/ports/post"
	userPort "myforum/internal/ports/user"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

const DefaultPageSize = 20

// ImageRemover پاک کردن فایل تصویر پس از حذف پست
type ImageRemover interface {
	Delete(path string) error
}

// IndexRebuilder refills the feed index from the database.
type IndexRebuilder interface {
	Rebuild(ctx context.Context) (int, error)
}

type PostService struct {
	PostRepository    postPort.PostRepository
	CommentRepository postPort.CommentRepository
	LikeRepository    postPort.LikeRepository
	UserRepository    userPort.UserRepository
	FeedIndex         feedPort.FeedIndex // اختیاری؛ nil یعنی فقط دیتابیس
	IndexRebuilder    IndexRebuilder
	Images            ImageRemover
	DeletePolicy      DeletePolicy
	Transformer       *Transformer

	logger   *zap.Logger
	pageSize int
	now      func() time.Time

	// indexStale is set when a write to FeedIndex failed; the feed is read
	// from the database until the next successful rebuild.
	indexStale atomic.Bool
}

type Option func(*PostService)

func WithFeedIndex(idx feedPort.FeedIndex) Option {
	return func(s *PostService) { s.FeedIndex = idx }
}

func WithIndexRebuilder(r IndexRebuilder) Option {
	return func(s *PostService) { s.IndexRebuilder = r }
}

func WithImages(images ImageRemover) Option {
	return func(s *PostService) { s.Images = images }
}

func WithDeletePolicy(policy DeletePolicy) Option {
	return func(s *PostService) { s.DeletePolicy = policy }
}

func WithPageSize(n int) Option {
	return func(s *PostService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *PostService) { s.now = now }
}

func NewPostService(
	postRepo postPort.PostRepository,
	commentRepo postPort.CommentRepository,
	likeRepo postPort.LikeRepository,
	userRepo userPort.UserRepository,
	logger *zap.Logger,
	opts ...Option,
) *PostService {
	s := &PostService{
		PostRepository:    postRepo,
		CommentRepository: commentRepo,
		LikeRepository:    likeRepo,
		UserRepository:    userRepo,
		DeletePolicy:      AuthorOnly,
		Transformer:       NewTransformer(likeRepo, commentRepo),
		logger:            logger,
		pageSize:          DefaultPageSize,
		now:               func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePost اعتبارسنجی، ساخت و ذخیره پست جدید
//
// createdAt is truncated to milliseconds so the feed index score and the
// stored timestamp order posts identically.
func (s *PostService) CreatePost(ctx context.Context, author *user.Viewer, title, text string, image *string) (*postEntity.Post, error) {
	v := postEntity.Draft{Title: title, Text: text, Image: image}.Validate()
	owner := s.resolveAuthor(ctx, author, v)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	p := &postEntity.Post{
		ID:        uuid.Must(uuid.NewV4()),
		Title:     title,
		Text:      text,
		Image:     image,
		CreatedAt: s.now().Truncate(time.Millisecond),
	}
	if err := p.AssignAuthor(owner); err != nil {
		return nil, err
	}

	created, err := s.PostRepository.Save(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if s.FeedIndex != nil {
		entry := feedPort.Entry{PostID: created.ID, CreatedAt: created.CreatedAt}
		if err := s.FeedIndex.Add(ctx, entry); err != nil {
			s.markIndexStale("could not add post to feed index", created.ID, err)
		}
	}

	s.logger.Debug("post created", zap.String("postID", created.ID.String()), zap.String("authorID", created.UserID.String()))
	return created, nil
}

// CreateComment ثبت کامنت روی پست
func (s *PostService) CreateComment(ctx context.Context, author *user.Viewer, postID uuid.UUID, text string) (*postEntity.Comment, error) {
	p, err := s.PostRepository.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	v := postEntity.ValidateCommentText(text)
	owner := s.resolveAuthor(ctx, author, v)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	c := &postEntity.Comment{
		ID:        uuid.Must(uuid.NewV4()),
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := c.SetAuthor(owner); err != nil {
		return nil, err
	}
	p.AddComment(c)

	created, err := s.CommentRepository.Save(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return created, nil
}

// LikePost ensures a like edge exists for (post, viewer). Liking twice is a
// no-op; a conflict from storage means a concurrent request created the edge.
func (s *PostService) LikePost(ctx context.Context, postID uuid.UUID, viewer *user.Viewer) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}
	p, err := s.PostRepository.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	_, err = s.LikeRepository.FindOne(ctx, p.ID, viewer.ID)
	if err == nil {
		return nil
	}
	if !apperr.IsNotFound(err) {
		return fmt.Errorf("check like: %w", err)
	}

	like := &postEntity.LikedPost{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    viewer.ID,
		CreatedAt: s.now(),
	}
	p.AddLike(like)

	if _, err := s.LikeRepository.Save(ctx, like); err != nil {
		if apperr.IsConflict(err) {
			return nil
		}
		return fmt.Errorf("failed to like post: %w", err)
	}
	return nil
}

// DislikePost ensures no like edge exists for (post, viewer).
func (s *PostService) DislikePost(ctx context.Context, postID uuid.UUID, viewer *user.Viewer) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}
	p, err := s.PostRepository.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	like, err := s.LikeRepository.FindOne(ctx, p.ID, viewer.ID)
	if apperr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check like: %w", err)
	}

	if err := s.LikeRepository.Remove(ctx, like); err != nil && !apperr.IsNotFound(err) {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	return nil
}

// DeletePost حذف پست (و به تبع آن کامنت‌ها و لایک‌ها) پس از بررسی مجوز
func (s *PostService) DeletePost(ctx context.Context, postID uuid.UUID, viewer *user.Viewer) error {
	p, err := s.PostRepository.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.DeletePolicy(viewer, p); err != nil {
		return err
	}

	if err := s.PostRepository.Remove(ctx, p); err != nil {
		return err
	}

	if s.FeedIndex != nil {
		if err := s.FeedIndex.Remove(ctx, p.ID); err != nil {
			s.markIndexStale("could not remove post from feed index", p.ID, err)
		}
	}
	if s.Images != nil && p.Image != nil {
		if err := s.Images.Delete(*p.Image); err != nil {
			s.logger.Warn("could not delete post image", zap.String("image", *p.Image), zap.Error(err))
		}
	}
	return nil
}

// resolveAuthor loads the author behind viewer, recording a field error on v
// when the viewer is absent or unknown.
func (s *PostService) resolveAuthor(ctx context.Context, viewer *user.Viewer, v *apperr.ValidationError) *user.User {
	if !viewer.Present() {
		v.Add("author", "must not be null")
		return nil
	}
	u, err := s.UserRepository.FindByID(ctx, viewer.ID)
	if err != nil {
		v.Add("author", "unknown user")
		return nil
	}
	return u
}

func requireViewer(viewer *user.Viewer) error {
	if viewer.Present() {
		return nil
	}
	v := apperr.NewValidationError()
	v.Add("user", "must not be null")
	return v
}
