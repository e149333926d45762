package post

import (
	"strings"
	"time"

	"myforum/internal/core/apperr"
	"myforum/internal/core/user"

	"github.com/gofrs/uuid"
)

type Comment struct {
	ID        uuid.UUID  `gorm:"primary_key;type:char(36)"`
	Text      string     `gorm:"type:text;not null"`
	UserID    uuid.UUID  `gorm:"type:char(36);not null;index"`
	User      *user.User `gorm:"foreignKey:UserID"`
	PostID    uuid.UUID  `gorm:"type:char(36);not null;index"`
	Post      *Post      `gorm:"foreignKey:PostID"` // فقط برای پیمایش، مالکیت با Post است
	CreatedAt time.Time  `gorm:"not null"`
}

// ValidateCommentText checks a submitted comment form.
func ValidateCommentText(text string) *apperr.ValidationError {
	v := apperr.NewValidationError()
	if strings.TrimSpace(text) == "" {
		v.Add("text", "must not be blank")
	}
	return v
}

// SetPost updates the back reference. Use Post.AddComment to keep both sides in sync.
func (c *Comment) SetPost(p *Post) {
	c.Post = p
	if p == nil {
		c.PostID = uuid.Nil
		return
	}
	c.PostID = p.ID
}

func (c *Comment) SetAuthor(u *user.User) error {
	if u == nil || u.ID == uuid.Nil {
		return ErrAuthorRequired
	}
	c.UserID = u.ID
	c.User = u
	return nil
}
