package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"eduquiz-service/internal/domain"
)

// SessionState is the lifecycle position of a quiz session.
type SessionState int

const (
	StateNotStarted SessionState = iota
	StateInProgress
	StateCompleted
	// StateAbandoned is terminal; the session was left before submitting.
	StateAbandoned
)

func (s SessionState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	case StateAbandoned:
		return "abandoned"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state as its string form in JSON payloads.
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AttemptRecorder persists the attempt produced by a finished session.
type AttemptRecorder interface {
	Record(ctx context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error)
}

// QuestionView is a question as shown to the quiz taker (no answer key).
type QuestionView struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// SessionSnapshot is a point-in-time view of a session.
type SessionSnapshot struct {
	QuizID               string              `json:"quizId"`
	Title                string              `json:"title"`
	State                SessionState        `json:"state"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	TotalQuestions       int                 `json:"totalQuestions"`
	Progress             int                 `json:"progress"`
	RemainingSeconds     int                 `json:"remainingSeconds"`
	Remaining            string              `json:"remaining"`
	Question             *QuestionView       `json:"question,omitempty"`
	Selected             map[string]int      `json:"selected"`
	Attempt              *domain.QuizAttempt `json:"attempt,omitempty"`
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithTicker replaces the wall-clock ticker; a nil factory disables the
// autonomous countdown so ticks are only delivered through Tick.
func WithTicker(factory TickerFactory) SessionOption {
	return func(s *Session) { s.newTicker = factory }
}

// WithClock sets the timestamp source for recorded attempts.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// Session runs one timed attempt of a quiz for one user.
type Session struct {
	quiz      domain.Quiz
	userID    string
	recorder  AttemptRecorder
	newTicker TickerFactory
	now       func() time.Time

	mu          sync.Mutex
	state       SessionState
	index       int
	selected    map[string]int
	remaining   int
	attempt     *domain.QuizAttempt
	stopTicker  func()
	done        chan struct{}
	subscribers map[chan SessionSnapshot]struct{}
}

func NewSession(quiz domain.Quiz, userID string, recorder AttemptRecorder, opts ...SessionOption) *Session {
	s := &Session{
		quiz:        quiz,
		userID:      userID,
		recorder:    recorder,
		newTicker:   NewWallTicker,
		now:         time.Now,
		state:       StateNotStarted,
		selected:    make(map[string]int),
		remaining:   quiz.DurationSeconds(),
		done:        make(chan struct{}),
		subscribers: make(map[chan SessionSnapshot]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quiz returns the quiz being taken.
func (s *Session) Quiz() domain.Quiz { return s.quiz }

// UserID returns the quiz taker.
func (s *Session) UserID() string { return s.userID }

// Done is closed once the session is completed or abandoned.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the recorded attempt once the session is completed.
func (s *Session) Result() (domain.QuizAttempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == nil {
		return domain.QuizAttempt{}, false
	}
	return *s.attempt, true
}

// Start begins the countdown. The countdown stops when the session leaves
// StateInProgress or when ctx is cancelled, which abandons the session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateNotStarted {
		return s.invalid("start")
	}

	s.remaining = s.quiz.DurationSeconds()
	s.index = 0
	s.selected = make(map[string]int)
	s.state = StateInProgress

	if s.newTicker != nil {
		ticker := s.newTicker(time.Second)
		stop := make(chan struct{})
		var once sync.Once
		s.stopTicker = func() {
			once.Do(func() {
				close(stop)
				ticker.Stop()
			})
		}
		go s.run(ctx, ticker, stop)
	}

	s.broadcastLocked()
	return nil
}

func (s *Session) run(ctx context.Context, ticker Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			_ = s.Abandon()
			return
		case <-ticker.C():
			if err := s.tick(ctx); err != nil {
				return
			}
		}
	}
}

// Tick advances the countdown by one second and submits at zero. It is the
// hook the ticker drives and can be called directly to inject ticks.
func (s *Session) Tick() error {
	return s.tick(context.Background())
}

func (s *Session) tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return s.invalid("tick")
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		if _, err := s.submitLocked(ctx); err != nil {
			log.Printf("auto-submit quiz %s for user %s: %v", s.quiz.ID, s.userID, err)
			s.broadcastLocked()
		}
		return nil
	}
	s.broadcastLocked()
	return nil
}

// SelectAnswer records optionIndex for questionID; the last selection wins.
func (s *Session) SelectAnswer(questionID string, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return s.invalid("select answer")
	}
	i := s.quiz.QuestionIndex(questionID)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, questionID)
	}
	if optionIndex < 0 || optionIndex >= len(s.quiz.Questions[i].Options) {
		return domain.NewValidationError("optionIndex", fmt.Sprintf("%d out of range for question %s", optionIndex, questionID))
	}
	s.selected[questionID] = optionIndex
	s.broadcastLocked()
	return nil
}

// GoToNext moves forward; no-op on the last question.
func (s *Session) GoToNext() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return s.invalid("go to next")
	}
	if s.index < len(s.quiz.Questions)-1 {
		s.index++
	}
	s.broadcastLocked()
	return nil
}

// GoToPrevious moves back; no-op on the first question.
func (s *Session) GoToPrevious() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return s.invalid("go to previous")
	}
	if s.index > 0 {
		s.index--
	}
	s.broadcastLocked()
	return nil
}

// Submit grades the session and records exactly one attempt. A failed
// recording leaves the session in progress so it can be retried.
func (s *Session) Submit(ctx context.Context) (domain.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return domain.QuizAttempt{}, s.invalid("submit")
	}
	return s.submitLocked(ctx)
}

func (s *Session) submitLocked(ctx context.Context) (domain.QuizAttempt, error) {
	score, answers := Grade(s.quiz, s.selected)
	duration := s.quiz.DurationSeconds()
	timeTaken := duration - s.remaining
	if timeTaken < 0 {
		timeTaken = 0
	}
	if timeTaken > duration {
		timeTaken = duration
	}

	recorded, err := s.recorder.Record(ctx, domain.QuizAttempt{
		QuizID:           s.quiz.ID,
		UserID:           s.userID,
		Score:            score,
		TimeTaken:        timeTaken,
		Date:             s.now(),
		Completed:        true,
		Answers:          answers,
		AttendanceMarked: score >= domain.AttendanceThreshold,
	})
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("record attempt: %w", err)
	}

	s.attempt = &recorded
	s.finishLocked(StateCompleted)
	return recorded, nil
}

// Abandon leaves the session without recording anything.
func (s *Session) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCompleted || s.state == StateAbandoned {
		return s.invalid("abandon")
	}
	s.finishLocked(StateAbandoned)
	return nil
}

func (s *Session) finishLocked(state SessionState) {
	s.state = state
	if s.stopTicker != nil {
		s.stopTicker()
	}
	close(s.done)
	s.broadcastLocked()
}

func (s *Session) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", domain.ErrInvalidStateTransition, op, s.state)
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every change.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan SessionSnapshot, func()) {
	ch := make(chan SessionSnapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the oldest update so a slow reader never blocks the countdown
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() SessionSnapshot {
	selected := make(map[string]int, len(s.selected))
	for k, v := range s.selected {
		selected[k] = v
	}
	snap := SessionSnapshot{
		QuizID:               s.quiz.ID,
		Title:                s.quiz.Title,
		State:                s.state,
		CurrentQuestionIndex: s.index,
		TotalQuestions:       len(s.quiz.Questions),
		RemainingSeconds:     s.remaining,
		Remaining:            FormatRemaining(s.remaining),
		Selected:             selected,
	}
	if n := len(s.quiz.Questions); n > 0 {
		snap.Progress = RoundPercent(s.index+1, n)
	}
	if s.state == StateInProgress && s.index < len(s.quiz.Questions) {
		q := s.quiz.Questions[s.index]
		snap.Question = &QuestionView{ID: q.ID, Text: q.Text, Options: append([]string(nil), q.Options...)}
	}
	if s.attempt != nil {
		a := *s.attempt
		snap.Attempt = &a
	}
	return snap
}

// Grade scores selections against the answer key. answers[i] holds the
// option chosen for questions[i], or domain.Unanswered.
func Grade(quiz domain.Quiz, selected map[string]int) (int, []int) {
	answers := make([]int, len(quiz.Questions))
	correct := 0
	for i, q := range quiz.Questions {
		choice, ok := selected[q.ID]
		if !ok {
			answers[i] = domain.Unanswered
			continue
		}
		answers[i] = choice
		if choice == q.CorrectAnswer {
			correct++
		}
	}
	return RoundPercent(correct, len(quiz.Questions)), answers
}

// FormatRemaining renders seconds as m:ss.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
