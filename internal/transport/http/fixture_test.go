package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
	"eduquiz-service/internal/infra/kv"
	"eduquiz-service/internal/infra/memory"
	"eduquiz-service/internal/infra/seed"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	server   *httptest.Server
	services Services
	tokens   map[domain.Role]string
	users    map[domain.Role]domain.User
}

// newFixture serves the full router over in-memory stores. Sessions have no
// autonomous countdown so tests control time.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	backend := memory.NewKVStore()

	users := kv.NewUserStore(backend)
	demo, err := seed.DemoUsers(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("demo users: %v", err)
	}
	if err := users.Seed(ctx, demo); err != nil {
		t.Fatalf("seed users: %v", err)
	}

	catalog := app.NewCatalog(memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute))
	defs, err := seed.Achievements()
	if err != nil {
		t.Fatalf("achievements: %v", err)
	}
	tracker, err := app.NewAchievementTracker(defs, kv.NewAchievementStore(backend), catalog, time.UTC)
	if err != nil {
		t.Fatalf("tracker: %v", err)
	}
	ledger := app.NewAttemptLedger(kv.NewAttemptStore(backend), tracker).WithCatalog(catalog)
	tokens := app.NewTokenIssuer("test-secret", time.Hour)

	svc := Services{
		Auth:         app.NewAuthService(users, app.WithTokenIssuer(tokens), app.WithHashCost(bcrypt.MinCost)),
		Tokens:       tokens,
		Catalog:      catalog,
		Ledger:       ledger,
		Dashboards:   app.NewDashboards(catalog, ledger, users),
		Achievements: tracker,
		Settings:     app.NewSettingsService(kv.NewSettingsStore(backend)),
		Quizzes:      app.NewQuizService(memory.NewSessionStore(), catalog, ledger, app.WithTicker(nil)),
	}

	f := &fixture{
		server:   httptest.NewServer(NewRouter(svc)),
		services: svc,
		tokens:   make(map[domain.Role]string),
		users:    make(map[domain.Role]domain.User),
	}
	t.Cleanup(f.server.Close)
	for _, u := range demo {
		token, err := tokens.Issue(u)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		f.tokens[u.Role] = token
		f.users[u.Role] = u
	}
	return f
}

func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:         "quiz-1",
			Title:      "Arithmetic",
			Subject:    "Math",
			Duration:   1,
			Difficulty: domain.DifficultyEasy,
			Questions: []domain.Question{
				{ID: "q1", Text: "2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: 1},
				{ID: "q2", Text: "3 * 3?", Options: []string{"6", "9"}, CorrectAnswer: 1},
			},
		},
		{
			ID:         "quiz-2",
			Title:      "Geography",
			Subject:    "Geo",
			Duration:   45,
			Difficulty: domain.DifficultyHard,
			Questions: []domain.Question{
				{ID: "g1", Text: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: 0},
			},
		},
	}
}
