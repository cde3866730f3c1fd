package domain

import "time"

// AttendanceThreshold is the minimum score (percent) that marks attendance.
const AttendanceThreshold = 60

// Unanswered marks a question with no selected option in QuizAttempt.Answers.
const Unanswered = -1

// Difficulty grades a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question models an MCQ question; CorrectAnswer indexes into Options.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Text          string   `json:"text" yaml:"text"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correctAnswer" yaml:"correctAnswer"`
}

// Quiz is a timed collection of questions.
type Quiz struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Subject     string     `json:"subject" yaml:"subject"`
	Description string     `json:"description" yaml:"description"`
	Duration    int        `json:"duration" yaml:"duration"` // minutes
	Questions   []Question `json:"questions" yaml:"questions"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
}

// QuizAttempt is the immutable record of one completed quiz run.
type QuizAttempt struct {
	ID               string    `json:"id"`
	QuizID           string    `json:"quizId"`
	UserID           string    `json:"userId"`
	Score            int       `json:"score"`
	TimeTaken        int       `json:"timeTaken"` // seconds
	Date             time.Time `json:"date"`
	Completed        bool      `json:"completed"`
	Answers          []int     `json:"answers"`
	AttendanceMarked bool      `json:"attendanceMarked"`
}

// AchievementCategory groups achievements for filtering.
type AchievementCategory string

const (
	CategoryQuiz        AchievementCategory = "quiz"
	CategoryPerformance AchievementCategory = "performance"
	CategoryActivity    AchievementCategory = "activity"
	CategorySpecial     AchievementCategory = "special"
)

// Progress tracks a counter-style achievement.
type Progress struct {
	Current int `json:"current" yaml:"current"`
	Target  int `json:"target" yaml:"target"`
}

// Achievement is a per-user badge; UnlockedAt is set at most once.
type Achievement struct {
	ID          string              `json:"id" yaml:"id"`
	Title       string              `json:"title" yaml:"title"`
	Description string              `json:"description" yaml:"description"`
	Icon        string              `json:"icon" yaml:"icon"`
	Category    AchievementCategory `json:"category" yaml:"category"`
	UnlockedAt  *time.Time          `json:"unlockedAt" yaml:"-"`
	Progress    *Progress           `json:"progress,omitempty" yaml:"progress,omitempty"`
}

// Unlocked reports whether the achievement has been earned.
func (a Achievement) Unlocked() bool {
	return a.UnlockedAt != nil
}

// User is an account known to the auth collaborator.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash []byte `json:"passwordHash,omitempty"`
}

// Session is the authenticated principal persisted under the current_user key.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}
