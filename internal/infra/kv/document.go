// Package kv stores the app's documents as JSON values in any app.KVStore.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eduquiz-service/internal/app"
)

// Key layout shared by every KV backend.
const (
	AttemptsKey        = "quiz_attempts"
	UsersKey           = "users"
	SettingsPrefix     = "settings:"
	AchievementsPrefix = "achievements:"
)

func load[T any](ctx context.Context, store app.KVStore, key string, out *T) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func save[T any](ctx context.Context, store app.KVStore, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// errUnchanged aborts a modify without writing.
var errUnchanged = errors.New("document unchanged")

// modify decodes key, lets fn change it and writes it back atomically.
func modify[T any](ctx context.Context, store app.KVStore, key string, fn func(v *T) error) error {
	err := store.Update(ctx, key, func(raw []byte, ok bool) ([]byte, error) {
		var v T
		if ok {
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
		}
		if err := fn(&v); err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}
