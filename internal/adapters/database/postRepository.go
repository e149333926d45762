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

// PostRepositoryDatabase پیاده‌سازی PostRepository برای دیتابیس
type PostRepositoryDatabase struct {
	db *gorm.DB
}

// NewPostRepositoryDatabase سازنده PostRepositoryDatabase
func NewPostRepositoryDatabase(db *gorm.DB) *PostRepositoryDatabase {
	return &PostRepositoryDatabase{db: db}
}

func (repo *PostRepositoryDatabase) Save(ctx context.Context, p *post.Post) (*post.Post, error) {
	if p.UserID == uuid.Nil {
		return nil, post.ErrAuthorRequired
	}
	if err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return nil, translate(err, "post", p.ID.String())
	}
	return p, nil
}

// Remove حذف پست به همراه کامنت‌ها و لایک‌ها در یک تراکنش
func (repo *PostRepositoryDatabase) Remove(ctx context.Context, p *post.Post) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id := p.ID.String()
		if err := tx.Where("post_id = ?", id).Delete(&post.LikedPost{}).Error; err != nil {
			return fmt.Errorf("delete likes of post %s: %w", id, err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&post.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments of post %s: %w", id, err)
		}
		res := tx.Where("id = ?", id).Delete(&post.Post{})
		if res.Error != nil {
			return fmt.Errorf("delete post %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("post", id)
		}
		return nil
	})
}

func (repo *PostRepositoryDatabase) FindByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	var p post.Post
	if err := repo.db.WithContext(ctx).Preload("User").Where("id = ?", id.String()).First(&p).Error; err != nil {
		return nil, translate(err, "post", id.String())
	}
	return &p, nil
}

// FindByIDs returns the posts that still exist, in no particular order.
func (repo *PostRepositoryDatabase) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*post.Post, error) {
	posts := []*post.Post{}
	if len(ids) == 0 {
		return posts, nil
	}
	if err := repo.db.WithContext(ctx).Preload("User").Where("id IN ?", idStrings(ids)).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("find posts by ids: %w", err)
	}
	return posts, nil
}

func (repo *PostRepositoryDatabase) FindBy(ctx context.Context, criteria postPort.PostCriteria) ([]*post.Post, error) {
	q := repo.ordered(ctx)
	if criteria.AuthorID != uuid.Nil {
		q = q.Where("user_id = ?", criteria.AuthorID.String())
	}
	var posts []*post.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	return posts, nil
}

func (repo *PostRepositoryDatabase) FindAllOrderedByDateDescending(ctx context.Context, offset, limit int) ([]*post.Post, error) {
	q := repo.ordered(ctx)
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	posts := []*post.Post{}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}
	return posts, nil
}

func (repo *PostRepositoryDatabase) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := repo.db.WithContext(ctx).Model(&post.Post{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// ordered ترتیب فید: جدیدترین اول، در تساوی شناسه بزرگ‌تر اول
func (repo *PostRepositoryDatabase) ordered(ctx context.Context) *gorm.DB {
	return repo.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC")
}
