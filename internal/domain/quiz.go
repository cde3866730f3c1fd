package domain

import "fmt"

// DurationSeconds is the countdown budget of the quiz.
func (q Quiz) DurationSeconds() int {
	return q.Duration * 60
}

// QuestionIndex returns the position of questionID, or -1.
func (q Quiz) QuestionIndex(questionID string) int {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return i
		}
	}
	return -1
}

// Validate checks the catalog invariants of a quiz definition.
func (q Quiz) Validate() error {
	if q.ID == "" {
		return NewValidationError("id", "is required")
	}
	if q.Duration <= 0 {
		return NewValidationError("duration", fmt.Sprintf("must be positive (quiz %s)", q.ID))
	}
	if !q.Difficulty.Valid() {
		return NewValidationError("difficulty", fmt.Sprintf("unknown value %q (quiz %s)", q.Difficulty, q.ID))
	}
	if len(q.Questions) == 0 {
		return NewValidationError("questions", fmt.Sprintf("must not be empty (quiz %s)", q.ID))
	}
	seen := make(map[string]struct{}, len(q.Questions))
	for _, question := range q.Questions {
		if question.ID == "" {
			return NewValidationError("questions.id", fmt.Sprintf("is required (quiz %s)", q.ID))
		}
		if _, dup := seen[question.ID]; dup {
			return NewValidationError("questions.id", fmt.Sprintf("duplicate %q (quiz %s)", question.ID, q.ID))
		}
		seen[question.ID] = struct{}{}
		if len(question.Options) < 2 {
			return NewValidationError("questions.options", fmt.Sprintf("need at least 2 (question %s)", question.ID))
		}
		if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Options) {
			return NewValidationError("questions.correctAnswer", fmt.Sprintf("out of range (question %s)", question.ID))
		}
	}
	return nil
}
