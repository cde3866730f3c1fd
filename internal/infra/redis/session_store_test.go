package redis

import (
	"testing"
	"time"

	"eduquiz-service/internal/app"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session := app.NewSession(sampleQuizzes()[0], "u1", nil, app.WithTicker(nil))
	_ = store.Put("u1", session)
	got, err := mr.Get("quiz:session:u1")
	if err != nil || got != "quiz-1" {
		t.Fatalf("expected marker with quiz id, got %q err=%v", got, err)
	}

	store.Delete("u1", session)
	if mr.Exists("quiz:session:u1") {
		t.Fatalf("expected redis key to be removed")
	}
}
