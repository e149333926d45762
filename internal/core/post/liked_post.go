package post

import (
	"time"

	"myforum/internal/core/user"

	"github.com/gofrs/uuid"
)

// LikedPost is the like edge between a user and a post. The unique index
// keeps at most one edge per (user, post).
type LikedPost struct {
	ID        uuid.UUID  `gorm:"primary_key;type:char(36)"`
	UserID    uuid.UUID  `gorm:"type:char(36);not null;uniqueIndex:uniq_like_user_post"`
	User      *user.User `gorm:"foreignKey:UserID"`
	PostID    uuid.UUID  `gorm:"type:char(36);not null;uniqueIndex:uniq_like_user_post;index"`
	Post      *Post      `gorm:"foreignKey:PostID"`
	CreatedAt time.Time  `gorm:"not null;index"`
}

func (l *LikedPost) SetPost(p *Post) {
	l.Post = p
	if p == nil {
		l.PostID = uuid.Nil
		return
	}
	l.PostID = p.ID
}
