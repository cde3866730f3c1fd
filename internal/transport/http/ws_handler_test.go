package http

import (
	"context"
	"testing"
	"time"

	"eduquiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

func dialQuiz(t *testing.T, f *fixture, role domain.Role, quizID string) *websocket.Conn {
	t.Helper()
	u := "ws" + f.server.URL[len("http"):] + "/ws?quizId=" + quizID + "&token=" + f.tokens[role]
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketQuizFlow(t *testing.T) {
	f := newFixture(t)
	conn := dialQuiz(t, f, domain.RoleStudent, "quiz-1")

	msgType, payload := readNext(conn, t, "state")
	if payload["state"] != "not_started" {
		t.Fatalf("expected not_started, got %v (%s)", payload["state"], msgType)
	}

	send(t, conn, map[string]any{"type": "start"})
	_, payload = readNext(conn, t, "state")
	if payload["state"] != "in_progress" || payload["remaining"] != "1:00" {
		t.Fatalf("unexpected start snapshot %v", payload)
	}

	send(t, conn, map[string]any{"type": "select", "payload": map[string]any{"questionId": "q1", "optionIndex": 1}})
	readNext(conn, t, "state")
	send(t, conn, map[string]any{"type": "select", "payload": map[string]any{"questionId": "q1", "optionIndex": 7}})
	readNext(conn, t, "error")

	send(t, conn, map[string]any{"type": "submit"})
	_, payload = readNext(conn, t, "result")
	attempt, ok := payload["attempt"].(map[string]any)
	if !ok {
		t.Fatalf("expected attempt in result, got %v", payload)
	}
	if attempt["score"] != float64(50) || attempt["attendanceMarked"] != false {
		t.Fatalf("unexpected attempt %v", attempt)
	}

	send(t, conn, map[string]any{"type": "submit"})
	readNext(conn, t, "error")

	attempts, err := f.services.Ledger.ListByUser(context.Background(), f.users[domain.RoleStudent].ID)
	if err != nil || len(attempts) != 1 {
		t.Fatalf("expected exactly one recorded attempt, got %d (%v)", len(attempts), err)
	}
}

func TestWebSocketCloseAbandons(t *testing.T) {
	f := newFixture(t)
	student := f.users[domain.RoleStudent]
	conn := dialQuiz(t, f, domain.RoleStudent, "quiz-1")
	readNext(conn, t, "state")
	send(t, conn, map[string]any{"type": "start"})
	readNext(conn, t, "state")

	session, err := f.services.Quizzes.Active(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("active session: %v", err)
	}
	conn.Close()

	select {
	case <-session.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("session not abandoned after close")
	}
	attempts, _ := f.services.Ledger.ListByUser(context.Background(), student.ID)
	if len(attempts) != 0 {
		t.Fatalf("abandoned session recorded %d attempts", len(attempts))
	}
}

func TestWebSocketRejectsNonStudents(t *testing.T) {
	f := newFixture(t)
	u := "ws" + f.server.URL[len("http"):] + "/ws?quizId=quiz-1&token=" + f.tokens[domain.RoleTeacher]
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != 403 {
		t.Fatalf("expected 403, got %v", resp)
	}
}

func TestWebSocketUnknownQuiz(t *testing.T) {
	f := newFixture(t)
	conn := dialQuiz(t, f, domain.RoleStudent, "missing")
	readNext(conn, t, "error")
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %v: %v", msg["type"], err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}
