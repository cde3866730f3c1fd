package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/config"
	"eduquiz-service/internal/domain"
	"eduquiz-service/internal/infra/file"
	"eduquiz-service/internal/infra/kv"
	"eduquiz-service/internal/infra/memory"
	pgstore "eduquiz-service/internal/infra/postgres"
	redisstore "eduquiz-service/internal/infra/redis"
	"eduquiz-service/internal/infra/seed"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// stack is every service built from one configuration.
type stack struct {
	cfg          config.Config
	kv           app.KVStore
	tokens       *app.TokenIssuer
	auth         *app.AuthService
	catalog      *app.Catalog
	ledger       *app.AttemptLedger
	achievements *app.AchievementTracker
	settings     *app.SettingsService
	dashboards   *app.Dashboards
	quizzes      *app.QuizService

	users    app.UserStore
	hashCost int
	closers  []func()
}

func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// loadStack builds the stack for a local CLI command. Only here is the login
// persisted under the current_user key; the server keeps sessions in tokens.
func loadStack(ctx context.Context, path string) (*stack, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	s, err := buildStack(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.auth = s.newAuth(app.WithSessionStore(s.kv))
	return s, nil
}

func (s *stack) newAuth(opts ...app.AuthOption) *app.AuthService {
	opts = append([]app.AuthOption{app.WithTokenIssuer(s.tokens), app.WithHashCost(s.hashCost)}, opts...)
	return app.NewAuthService(s.users, opts...)
}

// buildStack picks a backend per concern: Redis when an address is set,
// Postgres when a URL is set, and the configured KV driver for documents.
func buildStack(ctx context.Context, cfg config.Config) (*stack, error) {
	s := &stack{cfg: cfg}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, func() { redisClient.Close() })
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
	}

	store, err := openKV(cfg, redisClient)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.kv = store

	var loader memory.QuizLoader
	if pool != nil {
		loader = pgstore.NewQuizLoader(pool)
	} else {
		quizzes, err := catalogQuizzes(cfg)
		if err != nil {
			s.Close()
			return nil, err
		}
		loader = memory.NewStaticQuizLoader(quizzes)
	}
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}
	s.catalog = app.NewCatalog(quizRepo)

	users := kv.NewUserStore(store)
	cost := cfg.Auth.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	demo, err := seed.DemoUsers(cost)
	if err != nil {
		s.Close()
		return nil, err
	}
	if err := users.Seed(ctx, demo); err != nil {
		s.Close()
		return nil, fmt.Errorf("seed users: %w", err)
	}

	defs, err := seed.Achievements()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.achievements, err = app.NewAchievementTracker(defs, kv.NewAchievementStore(store), s.catalog, cfg.Location())
	if err != nil {
		s.Close()
		return nil, err
	}

	var attempts app.AttemptStore = kv.NewAttemptStore(store)
	if pool != nil {
		attempts = pgstore.NewAttemptStore(pool)
	}
	s.ledger = app.NewAttemptLedger(attempts, s.achievements).WithCatalog(s.catalog)

	s.tokens = app.NewTokenIssuer(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
	s.users = users
	s.hashCost = cost
	s.auth = s.newAuth()
	s.settings = app.NewSettingsService(kv.NewSettingsStore(store))
	s.dashboards = app.NewDashboards(s.catalog, s.ledger, users)

	var sessions app.SessionRepository = memory.NewSessionStore()
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	}
	s.quizzes = app.NewQuizService(sessions, s.catalog, s.ledger)
	return s, nil
}

func openKV(cfg config.Config, client *redis.Client) (app.KVStore, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return memory.NewKVStore(), nil
	case config.StorageRedis:
		if client == nil {
			return nil, fmt.Errorf("storage driver redis needs redis.addr")
		}
		return redisstore.NewKVStore(client, "eduquiz:"), nil
	case config.StorageFile, "":
		return file.Open(cfg.Storage.Path)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func catalogQuizzes(cfg config.Config) ([]domain.Quiz, error) {
	if cfg.Quiz.Catalog == "" {
		return seed.Quizzes()
	}
	raw, err := os.ReadFile(cfg.Quiz.Catalog)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return seed.ParseQuizzes(raw)
}
