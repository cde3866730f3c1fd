package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eduquiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizLoader loads quiz JSONB from Postgres.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return decodeQuiz(raw)
}

// LoadAll returns quizzes in insertion order.
func (l *QuizLoader) LoadAll(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM quizzes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quiz, err := decodeQuiz(raw)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

// UpsertQuizzes stores quizzes, keeping the original position of existing rows.
func UpsertQuizzes(ctx context.Context, pool *pgxpool.Pool, quizzes []domain.Quiz) error {
	batch := &pgx.Batch{}
	for _, q := range quizzes {
		if err := q.Validate(); err != nil {
			return err
		}
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal quiz %s: %w", q.ID, err)
		}
		batch.Queue(`INSERT INTO quizzes (id, data) VALUES ($1, $2::jsonb)
			ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`, q.ID, string(data))
	}
	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for range quizzes {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert quiz: %w", err)
		}
	}
	return nil
}

func decodeQuiz(raw []byte) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}
