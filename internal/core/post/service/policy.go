package postapp

import (
	"myforum/internal/core/apperr"
	postEntity "myforum/internal/core/post"
	"myforum/internal/core/user"
)

// DeletePolicy decides whether viewer may delete p. A nil return allows it.
type DeletePolicy func(viewer *user.Viewer, p *postEntity.Post) error

// AuthorOnly فقط نویسنده پست اجازه حذف دارد
func AuthorOnly(viewer *user.Viewer, p *postEntity.Post) error {
	if !viewer.Is(p.UserID) {
		return apperr.Forbidden("delete post")
	}
	return nil
}

// AllowAny lets any authenticated viewer delete any post.
func AllowAny(viewer *user.Viewer, p *postEntity.Post) error {
	if !viewer.Present() {
		return apperr.Forbidden("delete post")
	}
	return nil
}

// PolicyByName maps the DELETE_POLICY setting to a policy. Unknown names
// fall back to AuthorOnly.
func PolicyByName(name string) DeletePolicy {
	if name == "any" {
		return AllowAny
	}
	return AuthorOnly
}
