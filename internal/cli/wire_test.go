package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/config"
	"eduquiz-service/internal/domain"
	"eduquiz-service/internal/infra/seed"
)

func TestServerStackKeepsLoginsOutOfLocalSession(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.Driver = config.StorageMemory
	cfg.Auth.HashCost = 4

	s, err := buildStack(ctx, cfg)
	if err != nil {
		t.Fatalf("build stack: %v", err)
	}
	defer s.Close()

	if _, err := s.auth.Login(ctx, "teacher@example.com", seed.DemoPassword, domain.RoleTeacher); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, ok, _ := s.kv.Get(ctx, app.CurrentUserKey); ok {
		t.Fatalf("server login must not write %s", app.CurrentUserKey)
	}
	if _, err := s.auth.Current(ctx); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestLocalStackPersistsLogin(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	t.Setenv("EDUQUIZ_STATE", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  driver: file\n  path: " + filepath.Join(dir, "state.json") + "\nauth:\n  hashCost: 4\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	s, err := loadStack(ctx, cfgPath)
	if err != nil {
		t.Fatalf("load stack: %v", err)
	}
	if _, err := s.auth.Login(ctx, "student@example.com", seed.DemoPassword, domain.RoleStudent); err != nil {
		t.Fatalf("login: %v", err)
	}
	s.Close()

	again, err := loadStack(ctx, cfgPath)
	if err != nil {
		t.Fatalf("reload stack: %v", err)
	}
	defer again.Close()
	current, err := again.auth.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.User.Email != "student@example.com" || current.Token == "" {
		t.Fatalf("unexpected session %+v", current)
	}
}

func TestServeReturnsListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	server := &http.Server{Addr: busy.Addr().String(), Handler: http.NotFoundHandler()}
	done := make(chan error, 1)
	go func() { done <- serve(context.Background(), server) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected listen error")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not return after listen failure")
	}
}
