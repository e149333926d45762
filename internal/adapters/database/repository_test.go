package database

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"myforum/internal/config"
	"myforum/internal/core/apperr"
	"myforum/internal/core/post"
	"myforum/internal/core/user"
	postPort "myforum/internal/ports/post"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

var base = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type RepositorySuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	users    *UserRepositoryDatabase
	posts    *PostRepositoryDatabase
	comments *CommentRepositoryDatabase
	likes    *LikeRepositoryDatabase
	alice    *user.User
	bob      *user.User
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	s.ctx = context.Background()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(s.T().Name())
	db, err := config.OpenDB("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.T().Cleanup(func() { sqlDB.Close() })
	s.Require().NoError(config.Migrate(db))

	s.db = db
	s.users = NewUserRepositoryDatabase(db)
	s.posts = NewPostRepositoryDatabase(db)
	s.comments = NewCommentRepositoryDatabase(db)
	s.likes = NewLikeRepositoryDatabase(db)

	s.alice = s.createUser("alice")
	s.bob = s.createUser("bob")
}

func (s *RepositorySuite) createUser(name string) *user.User {
	u, err := s.users.Create(s.ctx, &user.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: name,
		Email:    name + "@example.com",
		Password: "hash",
		Avatar:   "/avatars/" + name + ".png",
	})
	s.Require().NoError(err)
	return u
}

func (s *RepositorySuite) createPost(id uuid.UUID, author *user.User, at time.Time) *post.Post {
	p := &post.Post{ID: id, Title: "title", Text: "text", CreatedAt: at}
	s.Require().NoError(p.AssignAuthor(author))
	saved, err := s.posts.Save(s.ctx, p)
	s.Require().NoError(err)
	return saved
}

func (s *RepositorySuite) like(u *user.User, p *post.Post, at time.Time) error {
	_, err := s.likes.Save(s.ctx, &post.LikedPost{UserID: u.ID, PostID: p.ID, CreatedAt: at})
	return err
}

func (s *RepositorySuite) TestUserConflictAndLookup() {
	_, err := s.users.Create(s.ctx, &user.User{ID: uuid.Must(uuid.NewV4()), Username: "alice", Email: "other@example.com", Password: "x"})
	s.True(apperr.IsConflict(err))

	found, err := s.users.FindByUsernameOrEmail(s.ctx, "nobody", "bob@example.com")
	s.Require().NoError(err)
	s.Equal(s.bob.ID, found.ID)

	_, err = s.users.FindByUsername(s.ctx, "nobody")
	s.True(apperr.IsNotFound(err))
}

func (s *RepositorySuite) TestFeedOrderBreaksTiesByID() {
	low := uuid.FromStringOrNil("00000000-0000-4000-8000-000000000001")
	high := uuid.FromStringOrNil("ffffffff-0000-4000-8000-000000000001")
	older := s.createPost(uuid.Must(uuid.NewV4()), s.alice, base.Add(-time.Hour))
	s.createPost(low, s.alice, base)
	s.createPost(high, s.bob, base)

	posts, err := s.posts.FindAllOrderedByDateDescending(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Require().Len(posts, 3)
	s.Equal(high, posts[0].ID)
	s.Equal(low, posts[1].ID)
	s.Equal(older.ID, posts[2].ID)
	s.Require().NotNil(posts[0].User)
	s.Equal("bob", posts[0].User.Username)

	page, err := s.posts.FindAllOrderedByDateDescending(s.ctx, 1, 1)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal(low, page[0].ID)

	n, err := s.posts.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), n)

	byBob, err := s.posts.FindBy(s.ctx, postPort.PostCriteria{AuthorID: s.bob.ID})
	s.Require().NoError(err)
	s.Len(byBob, 1)
}

func (s *RepositorySuite) TestLikeUniqueness() {
	p := s.createPost(uuid.Must(uuid.NewV4()), s.alice, base)

	s.Require().NoError(s.like(s.bob, p, base))
	err := s.like(s.bob, p, base.Add(time.Minute))
	s.True(apperr.IsConflict(err), "got %v", err)

	found, err := s.likes.FindOne(s.ctx, p.ID, s.bob.ID)
	s.Require().NoError(err)
	s.Equal(s.bob.ID, found.UserID)

	_, err = s.likes.FindOne(s.ctx, p.ID, s.alice.ID)
	s.True(apperr.IsNotFound(err))

	s.Require().NoError(s.likes.Remove(s.ctx, found))
	s.True(apperr.IsNotFound(s.likes.Remove(s.ctx, found)))
	s.NoError(s.like(s.bob, p, base), "like can be recreated after removal")
}

func (s *RepositorySuite) TestCountsAndViewerFlags() {
	p1 := s.createPost(uuid.Must(uuid.NewV4()), s.alice, base)
	p2 := s.createPost(uuid.Must(uuid.NewV4()), s.alice, base.Add(time.Second))
	p3 := s.createPost(uuid.Must(uuid.NewV4()), s.bob, base.Add(2*time.Second))

	s.Require().NoError(s.like(s.alice, p1, base))
	s.Require().NoError(s.like(s.bob, p1, base))
	s.Require().NoError(s.like(s.bob, p2, base))
	for _, text := range []string{"a", "b"} {
		c := &post.Comment{ID: uuid.Must(uuid.NewV4()), Text: text, CreatedAt: base}
		s.Require().NoError(c.SetAuthor(s.bob))
		c.SetPost(p2)
		_, err := s.comments.Save(s.ctx, c)
		s.Require().NoError(err)
	}

	ids := []uuid.UUID{p1.ID, p2.ID, p3.ID}
	likeCounts, err := s.likes.CountByPosts(s.ctx, ids)
	s.Require().NoError(err)
	s.Equal(int64(2), likeCounts[p1.ID])
	s.Equal(int64(1), likeCounts[p2.ID])
	s.Zero(likeCounts[p3.ID])

	commentCounts, err := s.comments.CountByPosts(s.ctx, ids)
	s.Require().NoError(err)
	s.Equal(int64(2), commentCounts[p2.ID])

	liked, err := s.likes.LikedPostIDs(s.ctx, s.bob.ID, ids)
	s.Require().NoError(err)
	s.Equal(map[uuid.UUID]bool{p1.ID: true, p2.ID: true}, liked)

	comments, err := s.comments.FindBy(s.ctx, postPort.CommentCriteria{PostID: p2.ID})
	s.Require().NoError(err)
	s.Require().Len(comments, 2)
	s.Require().NotNil(comments[0].User)
	s.Equal("bob", comments[0].User.Username)
}

func (s *RepositorySuite) TestRemoveCascades() {
	p := s.createPost(uuid.Must(uuid.NewV4()), s.alice, base)
	other := s.createPost(uuid.Must(uuid.NewV4()), s.alice, base)
	s.Require().NoError(s.like(s.bob, p, base))
	s.Require().NoError(s.like(s.bob, other, base))
	c := &post.Comment{ID: uuid.Must(uuid.NewV4()), Text: "hi", CreatedAt: base}
	s.Require().NoError(c.SetAuthor(s.bob))
	c.SetPost(p)
	_, err := s.comments.Save(s.ctx, c)
	s.Require().NoError(err)

	s.Require().NoError(s.posts.Remove(s.ctx, p))

	_, err = s.posts.FindByID(s.ctx, p.ID)
	s.True(apperr.IsNotFound(err))
	_, err = s.comments.FindByID(s.ctx, c.ID)
	s.True(apperr.IsNotFound(err))
	remaining, err := s.likes.FindBy(s.ctx, postPort.LikeCriteria{UserID: s.bob.ID})
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal(other.ID, remaining[0].PostID)

	s.True(apperr.IsNotFound(s.posts.Remove(s.ctx, p)))
}

func (s *RepositorySuite) TestUserLikeCountsAndWeeks() {
	p1 := s.createPost(uuid.Must(uuid.NewV4()), s.alice, base.AddDate(0, -2, 0))
	p2 := s.createPost(uuid.Must(uuid.NewV4()), s.alice, base.AddDate(0, -2, 0))
	p3 := s.createPost(uuid.Must(uuid.NewV4()), s.alice, base.AddDate(0, -2, 0))

	s.Require().NoError(s.like(s.bob, p1, base.AddDate(0, 0, -14)))
	s.Require().NoError(s.like(s.bob, p2, base.Add(-time.Hour)))
	s.Require().NoError(s.like(s.alice, p3, base.Add(-time.Hour)))

	total, err := s.likes.CountForUser(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), total)

	recent, err := s.likes.CountForUserSince(s.ctx, s.bob.ID, base.AddDate(0, 0, -7))
	s.Require().NoError(err)
	s.Equal(int64(1), recent)

	weeks, err := s.likes.CountGroupedByWeekSince(s.ctx, base.AddDate(0, -1, 0))
	s.Require().NoError(err)
	s.Equal(map[string]int64{"2026-W40": 1, "2026-W42": 2}, weeks)
}
