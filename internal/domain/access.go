package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of account kinds.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Roles lists every role in display order.
var Roles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

// ParseRole converts user input into a Role.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return r, nil
	}
	return "", NewValidationError("role", fmt.Sprintf("unknown role %q", raw))
}

// Permission is an action gated by role.
type Permission int

const (
	PermViewDashboard Permission = iota
	PermBrowseQuizzes
	PermEditOwnSettings
	PermTakeQuiz
	PermViewOwnPerformance
	PermViewAchievements
	PermViewSubmissions
	PermManageQuizzes
	PermManageUsers
	PermViewSystemStats
)

func (p Permission) String() string {
	switch p {
	case PermViewDashboard:
		return "view-dashboard"
	case PermBrowseQuizzes:
		return "browse-quizzes"
	case PermEditOwnSettings:
		return "edit-own-settings"
	case PermTakeQuiz:
		return "take-quiz"
	case PermViewOwnPerformance:
		return "view-own-performance"
	case PermViewAchievements:
		return "view-achievements"
	case PermViewSubmissions:
		return "view-submissions"
	case PermManageQuizzes:
		return "manage-quizzes"
	case PermManageUsers:
		return "manage-users"
	case PermViewSystemStats:
		return "view-system-stats"
	}
	return fmt.Sprintf("permission(%d)", int(p))
}

// Authorize is the single access-control decision point.
func Authorize(role Role, perm Permission) error {
	if allowed(role, perm) {
		return nil
	}
	return fmt.Errorf("%w: %s cannot %s", ErrForbidden, role, perm)
}

func allowed(role Role, perm Permission) bool {
	switch perm {
	case PermViewDashboard, PermBrowseQuizzes, PermEditOwnSettings:
		return role == RoleStudent || role == RoleTeacher || role == RoleAdmin
	case PermTakeQuiz, PermViewOwnPerformance, PermViewAchievements:
		return role == RoleStudent
	case PermViewSubmissions, PermManageQuizzes:
		return role == RoleTeacher
	case PermManageUsers, PermViewSystemStats:
		return role == RoleAdmin
	}
	return false
}
