package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"eduquiz-service/internal/app"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuestionID  string `json:"questionId"`
	OptionIndex int    `json:"optionIndex"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(err error) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

// ServeWS upgrades the request and drives one quiz session over the socket.
// Closing the socket abandons a session that was not submitted.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}
	user := currentUser(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session, err := h.service.Open(ctx, user, quizID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer func() {
		if err := session.Abandon(); err == nil {
			log.Printf("quiz %s abandoned by user %s", quizID, user.ID)
		}
	}()

	updates, unsubscribe := session.Subscribe()
	defer unsubscribe()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// a single writer goroutine owns the connection's write side
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		var prev *app.SessionSnapshot
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				msg := outboundMessage{Type: snapshotKind(prev, snap), Payload: snap}
				prev = &snap
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(ctx, session, inbound); err != nil {
			select {
			case send <- errorMessage(err):
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, session *app.Session, in inboundMessage) error {
	switch in.Type {
	case "start":
		return session.Start(ctx)
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		return session.SelectAnswer(payload.QuestionID, payload.OptionIndex)
	case "next":
		return session.GoToNext()
	case "previous":
		return session.GoToPrevious()
	case "submit":
		_, err := session.Submit(ctx)
		return err
	}
	return errUnsupportedMessage
}

// snapshotKind labels an update: the final result, a countdown tick, or any
// other state change.
func snapshotKind(prev *app.SessionSnapshot, next app.SessionSnapshot) string {
	if next.State == app.StateCompleted {
		return "result"
	}
	if prev != nil && prev.State == next.State &&
		prev.CurrentQuestionIndex == next.CurrentQuestionIndex &&
		prev.RemainingSeconds != next.RemainingSeconds {
		return "tick"
	}
	return "state"
}
