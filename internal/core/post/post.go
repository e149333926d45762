package post

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"myforum/internal/core/apperr"
	"myforum/internal/core/user"

	"github.com/gofrs/uuid"
)

const (
	TitleMaxLength = 50
	TextMaxLength  = 180
)

var (
	ErrAuthorRequired   = errors.New("post: author is required")
	ErrAuthorReassigned = errors.New("post: author cannot be reassigned")
)

// Post owns its Comments and Likes: removing a post removes both collections.
type Post struct {
	ID        uuid.UUID    `gorm:"primary_key;type:char(36)"`
	Title     string       `gorm:"type:varchar(50);not null"`
	Text      string       `gorm:"type:varchar(180);not null"`
	UserID    uuid.UUID    `gorm:"type:char(36);not null;index"`
	User      *user.User   `gorm:"foreignKey:UserID"`
	Image     *string      `gorm:"type:varchar(255)"`
	CreatedAt time.Time    `gorm:"not null;index"`
	Comments  []*Comment   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Likes     []*LikedPost `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// Draft ورودی کاربر برای ساخت پست قبل از ذخیره
type Draft struct {
	Title string
	Text  string
	Image *string
}

// Validate checks the length and blankness rules of a post form.
func (d Draft) Validate() *apperr.ValidationError {
	v := apperr.NewValidationError()
	checkText(v, "title", d.Title, TitleMaxLength)
	checkText(v, "text", d.Text, TextMaxLength)
	return v
}

func checkText(v *apperr.ValidationError, field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "must not be blank")
		return
	}
	if max > 0 && utf8.RuneCountInString(value) > max {
		v.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

// AssignAuthor sets the author once. A post never changes hands.
func (p *Post) AssignAuthor(u *user.User) error {
	if u == nil || u.ID == uuid.Nil {
		return ErrAuthorRequired
	}
	if p.UserID != uuid.Nil && p.UserID != u.ID {
		return ErrAuthorReassigned
	}
	p.UserID = u.ID
	p.User = u
	return nil
}

func (p *Post) AddComment(c *Comment) {
	if indexOfComment(p.Comments, c) < 0 {
		p.Comments = append(p.Comments, c)
	}
	c.SetPost(p)
}

// RemoveComment drops c from the collection. The back reference is cleared
// only while it still points at p.
func (p *Post) RemoveComment(c *Comment) bool {
	i := indexOfComment(p.Comments, c)
	if i < 0 {
		return false
	}
	p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
	if c.Post == p {
		c.SetPost(nil)
	}
	return true
}

func (p *Post) AddLike(l *LikedPost) {
	if indexOfLike(p.Likes, l) < 0 {
		p.Likes = append(p.Likes, l)
	}
	l.SetPost(p)
}

func (p *Post) RemoveLike(l *LikedPost) bool {
	i := indexOfLike(p.Likes, l)
	if i < 0 {
		return false
	}
	p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
	if l.Post == p {
		l.SetPost(nil)
	}
	return true
}

func indexOfComment(list []*Comment, c *Comment) int {
	for i, item := range list {
		if item == c || (c.ID != uuid.Nil && item.ID == c.ID) {
			return i
		}
	}
	return -1
}

func indexOfLike(list []*LikedPost, l *LikedPost) int {
	for i, item := range list {
		if item == l || (l.ID != uuid.Nil && item.ID == l.ID) {
			return i
		}
	}
	return -1
}

// WeekKey formats t as a UTC ISO week identifier, e.g. "2026-W42".
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
