package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"eduquiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptStore keeps the attempt ledger in the quiz_attempts table. Rows are
// only ever inserted.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) Append(ctx context.Context, a domain.QuizAttempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO quiz_attempts
		(id, quiz_id, user_id, score, time_taken, taken_at, completed, answers, attendance_marked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)`,
		a.ID, a.QuizID, a.UserID, a.Score, a.TimeTaken, a.Date, a.Completed, string(answers), a.AttendanceMarked)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) List(ctx context.Context) ([]domain.QuizAttempt, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, quiz_id, user_id, score, time_taken, taken_at, completed, answers, attendance_marked
		FROM quiz_attempts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuizAttempt, 0)
	for rows.Next() {
		var (
			a       domain.QuizAttempt
			answers []byte
		)
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.TimeTaken, &a.Date, &a.Completed, &answers, &a.AttendanceMarked); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
