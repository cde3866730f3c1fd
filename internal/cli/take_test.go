package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
	"eduquiz-service/internal/infra/kv"
	"eduquiz-service/internal/infra/memory"
)

func takeQuiz() domain.Quiz {
	return domain.Quiz{
		ID:         "quiz-1",
		Title:      "Arithmetic",
		Duration:   2,
		Difficulty: domain.DifficultyEasy,
		Questions: []domain.Question{
			{ID: "q1", Text: "2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: 1},
			{ID: "q2", Text: "3 * 3?", Options: []string{"9", "6"}, CorrectAnswer: 0},
		},
	}
}

func startSession(t *testing.T) (*app.Session, *app.AttemptLedger) {
	t.Helper()
	ledger := app.NewAttemptLedger(kv.NewAttemptStore(memory.NewKVStore()))
	session := app.NewSession(takeQuiz(), "u1", ledger, app.WithTicker(nil))
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return session, ledger
}

func TestDriveSubmitsAnswers(t *testing.T) {
	session, ledger := startSession(t)
	var out bytes.Buffer

	in := strings.NewReader("2\nn\n1\nx\ns\n")
	if err := drive(context.Background(), session, in, &out); err != nil {
		t.Fatalf("drive: %v", err)
	}
	if !strings.Contains(out.String(), "score 100%") {
		t.Fatalf("expected perfect score, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), `unknown command "x"`) {
		t.Fatalf("expected unknown command error, got:\n%s", out.String())
	}
	attempts, _ := ledger.ListByUser(context.Background(), "u1")
	if len(attempts) != 1 || attempts[0].Answers[0] != 1 || attempts[0].Answers[1] != 0 {
		t.Fatalf("unexpected attempts %+v", attempts)
	}
}

func TestDriveQuitAbandons(t *testing.T) {
	session, ledger := startSession(t)
	var out bytes.Buffer

	if err := drive(context.Background(), session, strings.NewReader("1\nq\n"), &out); err != nil {
		t.Fatalf("drive: %v", err)
	}
	if session.State() != app.StateAbandoned {
		t.Fatalf("expected abandoned, got %s", session.State())
	}
	attempts, _ := ledger.ListByUser(context.Background(), "u1")
	if len(attempts) != 0 {
		t.Fatalf("abandoned quiz recorded %d attempts", len(attempts))
	}
}

func TestDriveExpiryAutoSubmits(t *testing.T) {
	session, ledger := startSession(t)
	if err := session.SelectAnswer("q1", 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	for i := 0; i < 120; i++ {
		if err := session.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	var out bytes.Buffer
	reader, writer := io.Pipe()
	defer writer.Close()
	if err := drive(context.Background(), session, reader, &out); err != nil {
		t.Fatalf("drive: %v", err)
	}
	if !strings.Contains(out.String(), "score 50% in 2:00") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
	attempts, _ := ledger.ListByUser(context.Background(), "u1")
	if len(attempts) != 1 || attempts[0].TimeTaken != 120 {
		t.Fatalf("unexpected attempts %+v", attempts)
	}
}

