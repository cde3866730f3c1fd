package app

import (
	"context"
	"fmt"

	"eduquiz-service/internal/domain"
)

// Catalog answers read-only quiz lookups.
type Catalog struct {
	quizzes QuizRepository
}

func NewCatalog(quizzes QuizRepository) *Catalog {
	return &Catalog{quizzes: quizzes}
}

// GetQuiz returns the quiz or an error wrapping domain.ErrQuizNotFound.
func (c *Catalog) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := c.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz %s: %w", quizID, err)
	}
	return quiz, nil
}

// ListQuizzes returns quizzes in catalog insertion order.
func (c *Catalog) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := c.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

// Size is the number of quizzes in the catalog.
func (c *Catalog) Size(ctx context.Context) (int, error) {
	quizzes, err := c.ListQuizzes(ctx)
	if err != nil {
		return 0, err
	}
	return len(quizzes), nil
}

// index maps quiz IDs to definitions for joins against attempts.
func (c *Catalog) index(ctx context.Context) (map[string]domain.Quiz, error) {
	quizzes, err := c.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Quiz, len(quizzes))
	for _, q := range quizzes {
		out[q.ID] = q
	}
	return out, nil
}
