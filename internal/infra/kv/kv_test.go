package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"eduquiz-service/internal/domain"
	"eduquiz-service/internal/infra/file"
	"eduquiz-service/internal/infra/memory"
)

func TestAttemptStoreAppendsInOrder(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewKVStore()
	store := NewAttemptStore(backend)

	list, err := store.List(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty ledger, got %v %v", list, err)
	}

	date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"a1", "a2"} {
		if err := store.Append(ctx, domain.QuizAttempt{ID: id, QuizID: "1", UserID: "u", Score: 80, Date: date, Answers: []int{1, -1}}); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}
	list, err = store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a1" || list[1].ID != "a2" {
		t.Fatalf("unexpected ledger %+v", list)
	}
	if list[0].Answers[1] != domain.Unanswered || !list[0].Date.Equal(date) {
		t.Fatalf("attempt did not round-trip: %+v", list[0])
	}
	if _, ok, _ := backend.Get(ctx, AttemptsKey); !ok {
		t.Fatalf("expected ledger under %s", AttemptsKey)
	}
}

func TestUserStoreSeedAndLookup(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(memory.NewKVStore())

	seed := []domain.User{
		{ID: "s", Name: "Student", Email: "student@example.com", Role: domain.RoleStudent},
		{ID: "t", Name: "Teacher", Email: "teacher@example.com", Role: domain.RoleTeacher},
	}
	if err := store.Seed(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Seed(ctx, seed); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	users, _ := store.List(ctx)
	if len(users) != 2 {
		t.Fatalf("seeding twice should not duplicate, got %d users", len(users))
	}

	u, err := store.FindByEmail(ctx, "Teacher@Example.com")
	if err != nil || u.ID != "t" {
		t.Fatalf("find by email: %+v %v", u, err)
	}
	if _, err := store.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	err = store.Add(ctx, domain.User{ID: "x", Email: "student@example.com", Role: domain.RoleStudent})
	if !errors.Is(err, domain.ErrEmailAlreadyInUse) {
		t.Fatalf("expected ErrEmailAlreadyInUse, got %v", err)
	}
}

func TestSettingsAndAchievementKeys(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewKVStore()
	settings := NewSettingsStore(backend)
	achievements := NewAchievementStore(backend)

	if _, ok, err := settings.Get(ctx, "u1"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := settings.Put(ctx, domain.DefaultSettings("settings-1", "u1")); err != nil {
		t.Fatalf("put settings: %v", err)
	}
	got, ok, err := settings.Get(ctx, "u1")
	if err != nil || !ok || got.ID != "settings-1" {
		t.Fatalf("get settings: %+v %v %v", got, ok, err)
	}

	list := []domain.Achievement{{ID: "1", Progress: &domain.Progress{Current: 2, Target: 10}}}
	if err := achievements.Save(ctx, "u1", list); err != nil {
		t.Fatalf("save achievements: %v", err)
	}
	loaded, ok, err := achievements.Load(ctx, "u1")
	if err != nil || !ok || len(loaded) != 1 || loaded[0].Progress.Current != 2 {
		t.Fatalf("load achievements: %+v %v %v", loaded, ok, err)
	}

	keys, _ := backend.List(ctx, "")
	want := []string{AchievementsPrefix + "u1", SettingsPrefix + "u1"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestAttemptStoresSharingAFileKeepEveryAppend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	first, err := file.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, err := file.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	stores := []*AttemptStore{NewAttemptStore(first), NewAttemptStore(second)}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := domain.QuizAttempt{ID: fmt.Sprintf("a%d", i), QuizID: "1", UserID: "u", Answers: []int{0}}
			if err := stores[i%2].Append(ctx, a); err != nil {
				t.Errorf("append %s: %v", a.ID, err)
			}
		}(i)
	}
	wg.Wait()

	reopened, err := file.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	list, err := NewAttemptStore(reopened).List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 20 {
		t.Fatalf("expected 20 attempts on disk, got %d", len(list))
	}
}

func TestUserStoreAddRejectsDuplicateWithoutWriting(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewKVStore()
	store := NewUserStore(backend)
	if err := store.Add(ctx, domain.User{ID: "1", Email: "a@example.com", Role: domain.RoleStudent}); err != nil {
		t.Fatalf("add: %v", err)
	}
	before, _, _ := backend.Get(ctx, UsersKey)
	err := store.Add(ctx, domain.User{ID: "2", Email: "A@example.com", Role: domain.RoleStudent})
	if !errors.Is(err, domain.ErrEmailAlreadyInUse) {
		t.Fatalf("expected ErrEmailAlreadyInUse, got %v", err)
	}
	after, _, _ := backend.Get(ctx, UsersKey)
	if string(before) != string(after) {
		t.Fatalf("rejected add changed the stored users")
	}
}
