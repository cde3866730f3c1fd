package memory

import (
	"context"
	"errors"
	"testing"
)

func TestKVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewKVStore()

	if _, ok, _ := kv.Get(ctx, "current_user"); ok {
		t.Fatalf("expected empty store")
	}
	if err := kv.Set(ctx, "current_user", []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	_ = kv.Set(ctx, "settings:1", []byte("{}"))
	_ = kv.Set(ctx, "settings:2", []byte("{}"))

	v, ok, err := kv.Get(ctx, "current_user")
	if err != nil || !ok || string(v) != `{"id":"1"}` {
		t.Fatalf("unexpected get: %q %v %v", v, ok, err)
	}

	keys, _ := kv.List(ctx, "settings:")
	if len(keys) != 2 || keys[0] != "settings:1" || keys[1] != "settings:2" {
		t.Fatalf("unexpected keys %v", keys)
	}

	_ = kv.Delete(ctx, "current_user")
	if _, ok, _ := kv.Get(ctx, "current_user"); ok {
		t.Fatalf("expected key deleted")
	}
}

func TestKVStoreUpdate(t *testing.T) {
	ctx := context.Background()
	kv := NewKVStore()

	appendItem := func(current []byte, ok bool) ([]byte, error) {
		if !ok {
			return []byte(`["a"]`), nil
		}
		return append(current[:len(current)-1], []byte(`,"b"]`)...), nil
	}
	if err := kv.Update(ctx, "list", appendItem); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := kv.Update(ctx, "list", appendItem); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if v, _, _ := kv.Get(ctx, "list"); string(v) != `["a","b"]` {
		t.Fatalf("unexpected value %q", v)
	}

	boom := errors.New("boom")
	err := kv.Update(ctx, "list", func([]byte, bool) ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if v, _, _ := kv.Get(ctx, "list"); string(v) != `["a","b"]` {
		t.Fatalf("failed update changed the value to %q", v)
	}
}
