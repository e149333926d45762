package memory

import (
	"context"

	"myforum/internal/core/apperr"
	"myforum/internal/core/user"

	"github.com/gofrs/uuid"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, apperr.Conflict("user", "username or email already taken")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.Must(uuid.NewV4())
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if u := r.s.userCopy(id); u != nil {
		return u, nil
	}
	return nil, apperr.NotFound("user", id.String())
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.Username == username }, username)
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.Username == username || u.Email == email }, username)
}

func (r *UserRepository) find(match func(*user.User) bool, key string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for id, u := range r.s.users {
		if match(u) {
			return r.s.userCopy(id), nil
		}
	}
	return nil, apperr.NotFound("user", key)
}
