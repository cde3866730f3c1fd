package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"eduquiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from a backing store (seed file, Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	LoadAll(ctx context.Context) ([]domain.Quiz, error)
}

// QuizRepository caches quiz documents in Redis and falls back to a loader on cache miss.
// Quizzes are stored as:   SET   quiz:{quizID} <json>
// Catalog order is stored: RPUSH quiz:catalog {quizID}...
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group

	// rnd is shared by concurrent cache fills.
	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.cached(ctx, quizID); ok {
			return quiz, nil
		}
		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		pipe := r.client.Pipeline()
		r.queueQuiz(ctx, pipe, quiz)
		_, _ = pipe.Exec(ctx)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	if quizzes, ok := r.cachedList(ctx); ok {
		return quizzes, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		if quizzes, ok := r.cachedList(ctx); ok {
			return quizzes, nil
		}
		quizzes, err := r.loader.LoadAll(ctx)
		if err != nil {
			return nil, err
		}
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, catalogKey)
		for _, q := range quizzes {
			r.queueQuiz(ctx, pipe, q)
			pipe.RPush(ctx, catalogKey, q.ID)
		}
		if ttl := r.ttlWithJitter(); ttl > 0 && len(quizzes) > 0 {
			pipe.Expire(ctx, catalogKey, ttl)
		}
		_, _ = pipe.Exec(ctx)
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Quiz(nil), result.([]domain.Quiz)...), nil
}

const catalogKey = "quiz:catalog"

func (r *QuizRepository) quizKey(quizID string) string {
	return "quiz:" + quizID
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.Quiz, bool) {
	raw, err := r.client.Get(ctx, r.quizKey(quizID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) cachedList(ctx context.Context) ([]domain.Quiz, bool) {
	ids, err := r.client.LRange(ctx, catalogKey, 0, -1).Result()
	if err != nil || len(ids) == 0 {
		return nil, false
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.quizKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, false
	}
	out := make([]domain.Quiz, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// a quiz expired before the catalog list did
			return nil, false
		}
		var quiz domain.Quiz
		if err := json.Unmarshal([]byte(s), &quiz); err != nil {
			return nil, false
		}
		out = append(out, quiz)
	}
	return out, true
}

func (r *QuizRepository) queueQuiz(ctx context.Context, pipe redis.Pipeliner, quiz domain.Quiz) {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return
	}
	pipe.Set(ctx, r.quizKey(quiz.ID), raw, r.ttlWithJitter())
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
