package kv

import (
	"context"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
)

// AchievementStore keeps each user's list under achievements:<userID>.
type AchievementStore struct {
	kv app.KVStore
}

func NewAchievementStore(store app.KVStore) *AchievementStore {
	return &AchievementStore{kv: store}
}

func (s *AchievementStore) Load(ctx context.Context, userID string) ([]domain.Achievement, bool, error) {
	var list []domain.Achievement
	ok, err := load(ctx, s.kv, AchievementsPrefix+userID, &list)
	return list, ok, err
}

func (s *AchievementStore) Save(ctx context.Context, userID string, achievements []domain.Achievement) error {
	return save(ctx, s.kv, AchievementsPrefix+userID, achievements)
}
