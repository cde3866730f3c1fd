package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
	"eduquiz-service/internal/infra/memory"
)

func newTestService() (*app.QuizService, *app.AttemptLedger) {
	ledger := testLedger()
	catalog := testCatalog(numberedQuiz("quiz-1", "Math", 2, 1), numberedQuiz("quiz-2", "Math", 2, 1))
	return app.NewQuizService(memory.NewSessionStore(), catalog, ledger, app.WithTicker(nil)), ledger
}

var student = domain.User{ID: "u1", Name: "Alice", Role: domain.RoleStudent}

func TestOpenRequiresStudentAndKnownQuiz(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	teacher := domain.User{ID: "t1", Role: domain.RoleTeacher}
	if _, err := service.Open(ctx, teacher, "quiz-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for teacher, got %v", err)
	}
	if _, err := service.Open(ctx, student, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if _, err := service.Active(ctx, student.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestOpeningAnotherQuizAbandonsThePrevious(t *testing.T) {
	ctx := context.Background()
	service, ledger := newTestService()

	first, err := service.Open(ctx, student, "quiz-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := service.Open(ctx, student, "quiz-2")
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	if first.State() != app.StateAbandoned {
		t.Fatalf("expected first session abandoned, got %s", first.State())
	}
	active, err := service.Active(ctx, student.ID)
	if err != nil || active != second {
		t.Fatalf("expected second session active, got %v %v", active, err)
	}

	if err := second.Start(ctx); err != nil {
		t.Fatalf("start second: %v", err)
	}
	if _, err := second.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for {
		if _, err := service.Active(ctx, student.ID); errors.Is(err, domain.ErrSessionNotFound) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("finished session still active")
		}
		time.Sleep(5 * time.Millisecond)
	}
	attempts, _ := ledger.ListByUser(ctx, student.ID)
	if len(attempts) != 1 || attempts[0].QuizID != "quiz-2" {
		t.Fatalf("expected only the submitted quiz recorded, got %+v", attempts)
	}
}

func TestAbandonActiveSession(t *testing.T) {
	ctx := context.Background()
	service, ledger := newTestService()

	session, err := service.Open(ctx, student, "quiz-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := service.Abandon(ctx, student.ID); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if session.State() != app.StateAbandoned {
		t.Fatalf("expected abandoned, got %s", session.State())
	}
	if _, err := service.Active(ctx, student.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected no active session, got %v", err)
	}
	if err := service.Abandon(ctx, student.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("second abandon: expected ErrSessionNotFound, got %v", err)
	}
	attempts, _ := ledger.All(ctx)
	if len(attempts) != 0 {
		t.Fatalf("abandon recorded %d attempts", len(attempts))
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	session, err := service.Open(ctx, student, "quiz-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ch, cancel := session.Subscribe()
	defer cancel()

	select {
	case snap := <-ch:
		if snap.State != app.StateNotStarted || snap.RemainingSeconds != 60 {
			t.Fatalf("unexpected initial snapshot %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected initial snapshot")
	}

	if err := session.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case snap := <-ch:
		if snap.State != app.StateInProgress || snap.Question == nil || snap.Question.ID != "quiz-1-1" {
			t.Fatalf("unexpected snapshot after start %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected update after start")
	}
}

func TestOpenAbandonsWhenContextEnds(t *testing.T) {
	service, ledger := newTestService()
	ctx, cancel := context.WithCancel(context.Background())

	session, err := service.Open(ctx, student, "quiz-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	cancel()

	select {
	case <-session.Done():
	case <-time.After(time.Second):
		t.Fatalf("session left open after its context ended")
	}
	if session.State() != app.StateAbandoned {
		t.Fatalf("expected abandoned, got %s", session.State())
	}
	deadline := time.Now().Add(time.Second)
	for {
		if _, err := service.Active(context.Background(), student.ID); errors.Is(err, domain.ErrSessionNotFound) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("abandoned session still registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	attempts, _ := ledger.All(context.Background())
	if len(attempts) != 0 {
		t.Fatalf("abandoned session recorded %d attempts", len(attempts))
	}
}
