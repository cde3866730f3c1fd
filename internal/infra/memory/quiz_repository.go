package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"eduquiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from a backing store (seed file, Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	LoadAll(ctx context.Context) ([]domain.Quiz, error)
}

const listKey = "\x00all"

// QuizRepository caches quizzes with TTL to avoid repeated loader hits.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu      sync.RWMutex
	cache   map[string]cachedQuiz
	order   []string
	orderAt time.Time
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		if quiz, ok := r.cached(quizID); ok {
			return quiz, nil
		}
		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.mu.Lock()
		r.storeLocked(quiz, r.clock())
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// ListQuizzes returns every quiz in loader order; the order list shares the TTL.
func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	if quizzes, ok := r.cachedList(); ok {
		return quizzes, nil
	}

	result, err, _ := r.sf.Do(listKey, func() (interface{}, error) {
		if quizzes, ok := r.cachedList(); ok {
			return quizzes, nil
		}
		quizzes, err := r.loader.LoadAll(ctx)
		if err != nil {
			return nil, err
		}
		now := r.clock()
		r.mu.Lock()
		r.order = r.order[:0]
		for _, q := range quizzes {
			r.order = append(r.order, q.ID)
			r.storeLocked(q, now)
		}
		r.orderAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Quiz(nil), result.([]domain.Quiz)...), nil
}

func (r *QuizRepository) cached(quizID string) (domain.Quiz, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[quizID]; ok && entry.expiresAt.After(now) {
		return entry.quiz, true
	}
	return domain.Quiz{}, false
}

func (r *QuizRepository) cachedList() ([]domain.Quiz, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.order == nil || !r.orderAt.After(now) {
		return nil, false
	}
	out := make([]domain.Quiz, 0, len(r.order))
	for _, id := range r.order {
		entry, ok := r.cache[id]
		if !ok || !entry.expiresAt.After(now) {
			return nil, false
		}
		out = append(out, entry.quiz)
	}
	return out, true
}

func (r *QuizRepository) storeLocked(quiz domain.Quiz, now time.Time) {
	r.cache[quiz.ID] = cachedQuiz{
		quiz:      quiz,
		expiresAt: now.Add(r.ttlWithJitter()),
	}
}

// StaticQuizLoader is a loader backed by an ordered in-memory list (seed catalog, tests).
type StaticQuizLoader struct {
	quizzes []domain.Quiz
	byID    map[string]int
}

func NewStaticQuizLoader(quizzes []domain.Quiz) *StaticQuizLoader {
	byID := make(map[string]int, len(quizzes))
	for i, q := range quizzes {
		byID[q.ID] = i
	}
	return &StaticQuizLoader{quizzes: quizzes, byID: byID}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if i, ok := l.byID[quizID]; ok {
		return l.quizzes[i], nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (l *StaticQuizLoader) LoadAll(_ context.Context) ([]domain.Quiz, error) {
	return append([]domain.Quiz(nil), l.quizzes...), nil
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
