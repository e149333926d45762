package database

import (
	"context"
	"fmt"

	"myforum/internal/core/apperr"
	"myforum/internal/core/post"
	postPort "myforum/internal/ports/post"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepositoryDatabase struct {
	db *gorm.DB
}

func NewCommentRepositoryDatabase(db *gorm.DB) *CommentRepositoryDatabase {
	return &CommentRepositoryDatabase{db: db}
}

func (repo *CommentRepositoryDatabase) Save(ctx context.Context, c *post.Comment) (*post.Comment, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.Must(uuid.NewV4())
	}
	if err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return nil, translate(err, "comment", c.ID.String())
	}
	return c, nil
}

func (repo *CommentRepositoryDatabase) Remove(ctx context.Context, c *post.Comment) error {
	res := repo.db.WithContext(ctx).Where("id = ?", c.ID.String()).Delete(&post.Comment{})
	if res.Error != nil {
		return translate(res.Error, "comment", c.ID.String())
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("comment", c.ID.String())
	}
	return nil
}

func (repo *CommentRepositoryDatabase) FindByID(ctx context.Context, id uuid.UUID) (*post.Comment, error) {
	var c post.Comment
	if err := repo.db.WithContext(ctx).Preload("User").Where("id = ?", id.String()).First(&c).Error; err != nil {
		return nil, translate(err, "comment", id.String())
	}
	return &c, nil
}

func (repo *CommentRepositoryDatabase) FindBy(ctx context.Context, criteria postPort.CommentCriteria) ([]*post.Comment, error) {
	q := repo.db.WithContext(ctx).Preload("User").Order("created_at ASC").Order("id ASC")
	if criteria.PostID != uuid.Nil {
		q = q.Where("post_id = ?", criteria.PostID.String())
	}
	if criteria.AuthorID != uuid.Nil {
		q = q.Where("user_id = ?", criteria.AuthorID.String())
	}
	comments := []*post.Comment{}
	if err := q.Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	return comments, nil
}

func (repo *CommentRepositoryDatabase) CountByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(postIDs) == 0 {
		return map[uuid.UUID]int64{}, nil
	}
	var rows []postCount
	if err := repo.db.WithContext(ctx).Model(&post.Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", idStrings(postIDs)).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	return countsByPost(rows), nil
}
