package database

import (
	"context"
	"fmt"
	"time"

	"myforum/internal/core/apperr"
	"myforum/internal/core/post"
	postPort "myforum/internal/ports/post"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepositoryDatabase struct {
	db *gorm.DB
}

func NewLikeRepositoryDatabase(db *gorm.DB) *LikeRepositoryDatabase {
	return &LikeRepositoryDatabase{db: db}
}

// Save درج شرطی روی ایندکس یکتای (user_id, post_id)
//
// The insert is a single ON CONFLICT DO NOTHING statement; zero affected rows
// means another like for the same pair already exists.
func (repo *LikeRepositoryDatabase) Save(ctx context.Context, l *post.LikedPost) (*post.LikedPost, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.Must(uuid.NewV4())
	}
	res := repo.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(l)
	if res.Error != nil {
		return nil, translate(res.Error, "liked post", l.ID.String())
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Conflict("liked post", "user already liked this post")
	}
	return l, nil
}

func (repo *LikeRepositoryDatabase) Remove(ctx context.Context, l *post.LikedPost) error {
	res := repo.db.WithContext(ctx).Where("id = ?", l.ID.String()).Delete(&post.LikedPost{})
	if res.Error != nil {
		return translate(res.Error, "liked post", l.ID.String())
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("liked post", l.ID.String())
	}
	return nil
}

func (repo *LikeRepositoryDatabase) FindByID(ctx context.Context, id uuid.UUID) (*post.LikedPost, error) {
	var l post.LikedPost
	if err := repo.db.WithContext(ctx).Where("id = ?", id.String()).First(&l).Error; err != nil {
		return nil, translate(err, "liked post", id.String())
	}
	return &l, nil
}

func (repo *LikeRepositoryDatabase) FindBy(ctx context.Context, criteria postPort.LikeCriteria) ([]*post.LikedPost, error) {
	q := repo.db.WithContext(ctx).Order("created_at ASC")
	if criteria.PostID != uuid.Nil {
		q = q.Where("post_id = ?", criteria.PostID.String())
	}
	if criteria.UserID != uuid.Nil {
		q = q.Where("user_id = ?", criteria.UserID.String())
	}
	likes := []*post.LikedPost{}
	if err := q.Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("find likes: %w", err)
	}
	return likes, nil
}

func (repo *LikeRepositoryDatabase) FindOne(ctx context.Context, postID, userID uuid.UUID) (*post.LikedPost, error) {
	var l post.LikedPost
	err := repo.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID.String(), userID.String()).
		First(&l).Error
	if err != nil {
		return nil, translate(err, "liked post", postID.String()+"/"+userID.String())
	}
	return &l, nil
}

func (repo *LikeRepositoryDatabase) LikedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := map[uuid.UUID]bool{}
	if len(postIDs) == 0 {
		return liked, nil
	}
	var ids []string
	if err := repo.db.WithContext(ctx).Model(&post.LikedPost{}).
		Where("user_id = ? AND post_id IN ?", userID.String(), idStrings(postIDs)).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("liked post ids: %w", err)
	}
	for _, id := range ids {
		liked[uuid.FromStringOrNil(id)] = true
	}
	return liked, nil
}

func (repo *LikeRepositoryDatabase) CountByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(postIDs) == 0 {
		return map[uuid.UUID]int64{}, nil
	}
	var rows []postCount
	if err := repo.db.WithContext(ctx).Model(&post.LikedPost{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", idStrings(postIDs)).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	return countsByPost(rows), nil
}

func (repo *LikeRepositoryDatabase) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if err := repo.db.WithContext(ctx).Model(&post.LikedPost{}).
		Where("user_id = ?", userID.String()).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count likes for user: %w", err)
	}
	return n, nil
}

func (repo *LikeRepositoryDatabase) CountForUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	if err := repo.db.WithContext(ctx).Model(&post.LikedPost{}).
		Where("user_id = ? AND created_at >= ?", userID.String(), since).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count recent likes for user: %w", err)
	}
	return n, nil
}

// CountGroupedByWeekSince گروه‌بندی هفتگی در Go انجام می‌شود تا به تابع WEEK دیتابیس وابسته نباشیم
func (repo *LikeRepositoryDatabase) CountGroupedByWeekSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	var likes []post.LikedPost
	if err := repo.db.WithContext(ctx).
		Select("id", "created_at").
		Where("created_at >= ?", since).
		Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("likes since %s: %w", since.Format(time.RFC3339), err)
	}
	weeks := map[string]int64{}
	for _, l := range likes {
		weeks[post.WeekKey(l.CreatedAt)]++
	}
	return weeks, nil
}
