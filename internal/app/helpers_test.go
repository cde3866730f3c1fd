package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
	"eduquiz-service/internal/infra/kv"
	"eduquiz-service/internal/infra/memory"
)

var baseTime = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

// numberedQuiz has n questions whose correct option is always index 1.
func numberedQuiz(id, subject string, n, minutes int) domain.Quiz {
	q := domain.Quiz{
		ID:         id,
		Title:      "Quiz " + id,
		Subject:    subject,
		Duration:   minutes,
		Difficulty: domain.DifficultyMedium,
	}
	for i := 0; i < n; i++ {
		q.Questions = append(q.Questions, domain.Question{
			ID:            fmt.Sprintf("%s-%d", id, i+1),
			Text:          fmt.Sprintf("question %d", i+1),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: 1,
		})
	}
	return q
}

func testCatalog(quizzes ...domain.Quiz) *app.Catalog {
	return app.NewCatalog(memory.NewQuizRepository(memory.NewStaticQuizLoader(quizzes), time.Minute))
}

type sequence struct {
	mu sync.Mutex
	n  int
}

func (s *sequence) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("attempt-%d", s.n)
}

func testLedger(observers ...app.AttemptObserver) *app.AttemptLedger {
	ids := &sequence{}
	return app.NewAttemptLedgerWithClock(kv.NewAttemptStore(memory.NewKVStore()),
		func() time.Time { return baseTime }, ids.next, observers...)
}

// manualTicker is a Ticker driven by the test.
type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.once.Do(func() { close(m.stopped) }) }

func (m *manualTicker) factory() app.TickerFactory {
	return func(time.Duration) app.Ticker { return m }
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, domain.QuizAttempt) (domain.QuizAttempt, error) {
	return domain.QuizAttempt{}, errors.New("disk full")
}
