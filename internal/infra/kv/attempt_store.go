package kv

import (
	"context"
	"sync"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
)

// AttemptStore keeps the whole ledger as one JSON array under AttemptsKey.
type AttemptStore struct {
	kv app.KVStore
	mu sync.Mutex
}

func NewAttemptStore(store app.KVStore) *AttemptStore {
	return &AttemptStore{kv: store}
}

func (s *AttemptStore) Append(ctx context.Context, attempt domain.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return modify(ctx, s.kv, AttemptsKey, func(attempts *[]domain.QuizAttempt) error {
		*attempts = append(*attempts, attempt)
		return nil
	})
}

func (s *AttemptStore) List(ctx context.Context) ([]domain.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempts := make([]domain.QuizAttempt, 0)
	if _, err := load(ctx, s.kv, AttemptsKey, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}
