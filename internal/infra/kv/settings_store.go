package kv

import (
	"context"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
)

// SettingsStore keeps one document per user under settings:<userID>.
type SettingsStore struct {
	kv app.KVStore
}

func NewSettingsStore(store app.KVStore) *SettingsStore {
	return &SettingsStore{kv: store}
}

func (s *SettingsStore) Get(ctx context.Context, userID string) (domain.UserSettings, bool, error) {
	var settings domain.UserSettings
	ok, err := load(ctx, s.kv, SettingsPrefix+userID, &settings)
	return settings, ok, err
}

func (s *SettingsStore) Put(ctx context.Context, settings domain.UserSettings) error {
	return save(ctx, s.kv, SettingsPrefix+settings.UserID, settings)
}
