// Package seed holds the built-in catalog, achievement definitions and demo
// accounts.
package seed

import (
	_ "embed"
	"fmt"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed quizzes.yaml
var quizzesYAML []byte

//go:embed achievements.yaml
var achievementsYAML []byte

// DemoPassword is the password of every demo account.
const DemoPassword = "password"

// Quizzes returns the built-in catalog in display order.
func Quizzes() ([]domain.Quiz, error) {
	return ParseQuizzes(quizzesYAML)
}

// ParseQuizzes decodes a YAML list of quizzes and validates each one.
func ParseQuizzes(raw []byte) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	if err := yaml.Unmarshal(raw, &quizzes); err != nil {
		return nil, fmt.Errorf("decode quizzes: %w", err)
	}
	seen := make(map[string]struct{}, len(quizzes))
	for _, q := range quizzes {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("quiz %s: %w", q.ID, err)
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("quiz %s: %w", q.ID, domain.NewValidationError("id", "is duplicated"))
		}
		seen[q.ID] = struct{}{}
	}
	return quizzes, nil
}

// Achievements returns the built-in achievement definitions.
func Achievements() ([]app.AchievementDefinition, error) {
	var defs []app.AchievementDefinition
	if err := yaml.Unmarshal(achievementsYAML, &defs); err != nil {
		return nil, fmt.Errorf("decode achievements: %w", err)
	}
	return defs, nil
}

// DemoUsers returns one account per role, hashed with cost.
func DemoUsers(cost int) ([]domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	return []domain.User{
		{ID: "1", Name: "Student User", Email: "student@example.com", Role: domain.RoleStudent, PasswordHash: hash},
		{ID: "2", Name: "Teacher User", Email: "teacher@example.com", Role: domain.RoleTeacher, PasswordHash: hash},
		{ID: "3", Name: "Admin User", Email: "admin@example.com", Role: domain.RoleAdmin, PasswordHash: hash},
	}, nil
}
