package kv

import (
	"context"
	"strings"
	"sync"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
)

// UserStore keeps registered accounts as one JSON array under UsersKey.
type UserStore struct {
	kv app.KVStore
	mu sync.Mutex
}

func NewUserStore(store app.KVStore) *UserStore {
	return &UserStore{kv: store}
}

// Seed adds the users whose email is not registered yet.
func (s *UserStore) Seed(ctx context.Context, users []domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return modify(ctx, s.kv, UsersKey, func(existing *[]domain.User) error {
		changed := false
		for _, u := range users {
			if indexByEmail(*existing, u.Email) >= 0 {
				continue
			}
			*existing = append(*existing, u)
			changed = true
		}
		if !changed {
			return errUnchanged
		}
		return nil
	})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if i := indexByEmail(users, email); i >= 0 {
		return users[i], nil
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) Add(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return modify(ctx, s.kv, UsersKey, func(users *[]domain.User) error {
		if indexByEmail(*users, user.Email) >= 0 {
			return domain.ErrEmailAlreadyInUse
		}
		*users = append(*users, user)
		return nil
	})
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *UserStore) loadLocked(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	if _, err := load(ctx, s.kv, UsersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func indexByEmail(users []domain.User, email string) int {
	for i, u := range users {
		if strings.EqualFold(u.Email, email) {
			return i
		}
	}
	return -1
}
