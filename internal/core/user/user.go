package user

import (
	"time"

	"github.com/gofrs/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"primary_key;type:char(36)"`
	Username  string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email     string    `gorm:"type:varchar(180);uniqueIndex;not null"`
	Password  string    `gorm:"not null"`
	Avatar    string    `gorm:"type:varchar(255)"` // آدرس آواتار
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Viewer هویت کاربری که درخواست فعلی را ارسال کرده است.
// nil means the request is anonymous.
type Viewer struct {
	ID     uuid.UUID
	Avatar string
}

// Present reports whether v identifies an authenticated user.
func (v *Viewer) Present() bool {
	return v != nil && v.ID != uuid.Nil
}

// Is reports whether v is the user with the given id.
func (v *Viewer) Is(id uuid.UUID) bool {
	return v.Present() && v.ID == id
}
