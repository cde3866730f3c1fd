package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"eduquiz-service/internal/domain"
	"github.com/google/uuid"
)

// AttemptObserver is notified synchronously after an attempt is recorded.
// history holds every attempt of the attempt's user, newest first.
type AttemptObserver interface {
	AttemptRecorded(ctx context.Context, attempt domain.QuizAttempt, history []domain.QuizAttempt) error
}

// AttemptLedger is the append-only record of completed attempts.
type AttemptLedger struct {
	store   AttemptStore
	catalog *Catalog
	now     func() time.Time
	newID   func() string

	// serializes record + notify so observers see histories in append order
	mu        sync.Mutex
	observers []AttemptObserver
}

func NewAttemptLedger(store AttemptStore, observers ...AttemptObserver) *AttemptLedger {
	return &AttemptLedger{
		store:     store,
		now:       time.Now,
		newID:     uuid.NewString,
		observers: observers,
	}
}

// NewAttemptLedgerWithClock is test-only for deterministic timestamps and IDs.
func NewAttemptLedgerWithClock(store AttemptStore, now func() time.Time, newID func() string, observers ...AttemptObserver) *AttemptLedger {
	l := NewAttemptLedger(store, observers...)
	l.now = now
	l.newID = newID
	return l
}

// WithCatalog makes Record check answers against the attempted quiz.
func (l *AttemptLedger) WithCatalog(c *Catalog) *AttemptLedger {
	l.catalog = c
	return l
}

// Observe registers an observer for future records.
func (l *AttemptLedger) Observe(o AttemptObserver) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

// Record appends attempt, assigning an ID and date when absent. Attendance is
// always derived from the score.
func (l *AttemptLedger) Record(ctx context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error) {
	if err := validateAttempt(attempt); err != nil {
		return domain.QuizAttempt{}, err
	}
	if l.catalog != nil {
		quiz, err := l.catalog.GetQuiz(ctx, attempt.QuizID)
		if err != nil {
			return domain.QuizAttempt{}, err
		}
		if err := validateAnswers(quiz, attempt.Answers); err != nil {
			return domain.QuizAttempt{}, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.store.List(ctx)
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("list attempts: %w", err)
	}
	if attempt.ID == "" {
		attempt.ID = l.newID()
	}
	for _, a := range existing {
		if a.ID == attempt.ID {
			return domain.QuizAttempt{}, domain.NewValidationError("id", fmt.Sprintf("attempt %s already recorded", attempt.ID))
		}
	}
	if attempt.Date.IsZero() {
		attempt.Date = l.now()
	}
	attempt.Completed = true
	attempt.AttendanceMarked = attempt.Score >= domain.AttendanceThreshold
	attempt.Answers = append([]int(nil), attempt.Answers...)

	if err := l.store.Append(ctx, attempt); err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("append attempt: %w", err)
	}

	if len(l.observers) > 0 {
		history := append(filterByUser(existing, attempt.UserID), attempt)
		SortByDateDesc(history)
		for _, o := range l.observers {
			if err := o.AttemptRecorded(ctx, attempt, history); err != nil {
				log.Printf("attempt %s observer failed: %v", attempt.ID, err)
			}
		}
	}
	return attempt, nil
}

func validateAttempt(a domain.QuizAttempt) error {
	switch {
	case a.QuizID == "":
		return domain.NewValidationError("quizId", "is required")
	case a.UserID == "":
		return domain.NewValidationError("userId", "is required")
	case a.Score < 0 || a.Score > 100:
		return domain.NewValidationError("score", "must be between 0 and 100")
	case a.TimeTaken < 0:
		return domain.NewValidationError("timeTaken", "must not be negative")
	}
	for i, answer := range a.Answers {
		if answer < domain.Unanswered {
			return domain.NewValidationError("answers", fmt.Sprintf("answer %d is %d", i, answer))
		}
	}
	return nil
}

// validateAnswers checks answers[i] against quiz.Questions[i]; an answer is
// an option index or domain.Unanswered.
func validateAnswers(quiz domain.Quiz, answers []int) error {
	if len(answers) > len(quiz.Questions) {
		return domain.NewValidationError("answers", fmt.Sprintf("%d answers for %d questions", len(answers), len(quiz.Questions)))
	}
	for i, answer := range answers {
		if answer != domain.Unanswered && answer >= len(quiz.Questions[i].Options) {
			return domain.NewValidationError("answers", fmt.Sprintf("answer %d out of range for question %s", answer, quiz.Questions[i].ID))
		}
	}
	return nil
}

// Get returns one attempt or domain.ErrAttemptNotFound.
func (l *AttemptLedger) Get(ctx context.Context, attemptID string) (domain.QuizAttempt, error) {
	all, err := l.store.List(ctx)
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("list attempts: %w", err)
	}
	for _, a := range all {
		if a.ID == attemptID {
			return a, nil
		}
	}
	return domain.QuizAttempt{}, fmt.Errorf("%w: %s", domain.ErrAttemptNotFound, attemptID)
}

// ListByUser returns the user's attempts, newest first.
func (l *AttemptLedger) ListByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	all, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := filterByUser(all, userID)
	SortByDateDesc(out)
	return out, nil
}

// ListByQuiz returns the quiz's attempts, newest first.
func (l *AttemptLedger) ListByQuiz(ctx context.Context, quizID string) ([]domain.QuizAttempt, error) {
	all, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.QuizAttempt, 0)
	for _, a := range all {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	SortByDateDesc(out)
	return out, nil
}

// All returns every attempt, newest first.
func (l *AttemptLedger) All(ctx context.Context) ([]domain.QuizAttempt, error) {
	all, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := append([]domain.QuizAttempt(nil), all...)
	SortByDateDesc(out)
	return out, nil
}

func filterByUser(attempts []domain.QuizAttempt, userID string) []domain.QuizAttempt {
	out := make([]domain.QuizAttempt, 0)
	for _, a := range attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}
