package app

import (
	"context"

	"eduquiz-service/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// AttemptStore persists the append-only attempt history.
type AttemptStore interface {
	Append(ctx context.Context, attempt domain.QuizAttempt) error
	List(ctx context.Context) ([]domain.QuizAttempt, error)
}

// UserStore holds registered accounts.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	Add(ctx context.Context, user domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}

// SettingsStore holds one settings document per user.
type SettingsStore interface {
	Get(ctx context.Context, userID string) (domain.UserSettings, bool, error)
	Put(ctx context.Context, settings domain.UserSettings) error
}

// AchievementStore holds the achievement list of each user.
type AchievementStore interface {
	Load(ctx context.Context, userID string) ([]domain.Achievement, bool, error)
	Save(ctx context.Context, userID string, achievements []domain.Achievement) error
}

// KVStore is the local key-value persistence used for the active session and
// the JSON documents of the kv repositories.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	// Update atomically replaces key with fn's result. An error from fn
	// leaves the key untouched and is returned as is.
	Update(ctx context.Context, key string, fn func(current []byte, ok bool) ([]byte, error)) error
}
