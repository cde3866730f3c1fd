package app

import (
	"context"

	"eduquiz-service/internal/domain"
)

// SessionRepository abstracts where active quiz sessions live (in-memory, Redis, etc).
// There is at most one active session per user.
type SessionRepository interface {
	// Put stores s as the user's active session and returns the one it replaced.
	Put(userID string, s *Session) *Session
	Get(userID string) (*Session, bool)
	// Delete removes s if it is still the user's active session.
	Delete(userID string, s *Session)
}

// QuizService contains the quiz-taking use cases.
type QuizService struct {
	sessions SessionRepository
	catalog  *Catalog
	ledger   *AttemptLedger
	opts     []SessionOption
}

func NewQuizService(store SessionRepository, catalog *Catalog, ledger *AttemptLedger, opts ...SessionOption) *QuizService {
	return &QuizService{sessions: store, catalog: catalog, ledger: ledger, opts: opts}
}

// Open prepares a not-yet-started session of quizID for user. Any session the
// user still had open is abandoned, and so is this one once ctx ends.
func (s *QuizService) Open(ctx context.Context, user domain.User, quizID string) (*Session, error) {
	if err := domain.Authorize(user.Role, domain.PermTakeQuiz); err != nil {
		return nil, err
	}
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	session := NewSession(quiz, user.ID, s.ledger, s.opts...)
	if previous := s.sessions.Put(user.ID, session); previous != nil {
		_ = previous.Abandon()
	}
	go func() {
		select {
		case <-session.Done():
		case <-ctx.Done():
			_ = session.Abandon()
		}
		s.sessions.Delete(user.ID, session)
	}()
	return session, nil
}

// Active returns the user's open session.
func (s *QuizService) Active(_ context.Context, userID string) (*Session, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Abandon leaves the user's open session without recording an attempt.
func (s *QuizService) Abandon(ctx context.Context, userID string) error {
	session, err := s.Active(ctx, userID)
	if err != nil {
		return err
	}
	err = session.Abandon()
	s.sessions.Delete(userID, session)
	return err
}
