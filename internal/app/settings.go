package app

import (
	"context"
	"fmt"

	"eduquiz-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SettingsService manages per-user preferences.
type SettingsService struct {
	store    SettingsStore
	validate *validator.Validate
	newID    func() string
}

func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{
		store:    store,
		validate: newValidator(),
		newID:    func() string { return "settings-" + uuid.NewString() },
	}
}

// Get returns the user's settings, creating defaults on first access.
func (s *SettingsService) Get(ctx context.Context, userID string) (domain.UserSettings, error) {
	if userID == "" {
		return domain.UserSettings{}, domain.NewValidationError("userId", "is required")
	}
	current, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return domain.UserSettings{}, fmt.Errorf("load settings: %w", err)
	}
	if ok {
		return current, nil
	}
	defaults := domain.DefaultSettings(s.newID(), userID)
	if err := s.store.Put(ctx, defaults); err != nil {
		return domain.UserSettings{}, fmt.Errorf("store settings: %w", err)
	}
	return defaults, nil
}

// Update merges patch into the stored settings. Each section merges on its
// own; fields the patch leaves nil keep their value.
func (s *SettingsService) Update(ctx context.Context, userID string, patch domain.SettingsPatch) (domain.UserSettings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return domain.UserSettings{}, err
	}
	next := patch.Apply(current)
	if err := s.validate.Struct(next); err != nil {
		return domain.UserSettings{}, validationError(err)
	}
	if err := s.store.Put(ctx, next); err != nil {
		return domain.UserSettings{}, fmt.Errorf("store settings: %w", err)
	}
	return next, nil
}

// Reset restores the defaults under a fresh settings ID.
func (s *SettingsService) Reset(ctx context.Context, userID string) (domain.UserSettings, error) {
	if userID == "" {
		return domain.UserSettings{}, domain.NewValidationError("userId", "is required")
	}
	defaults := domain.DefaultSettings(s.newID(), userID)
	if err := s.store.Put(ctx, defaults); err != nil {
		return domain.UserSettings{}, fmt.Errorf("store settings: %w", err)
	}
	return defaults, nil
}
