package app

import (
	"sort"

	"eduquiz-service/internal/domain"
)

// RoundPercent returns round(100*num/den) with halves rounded up, or 0 when
// den is zero. Integer arithmetic keeps boundary values such as 59.5 exact.
func RoundPercent(num, den int) int {
	if den <= 0 || num <= 0 {
		return 0
	}
	return (200*num + den) / (2 * den)
}

// roundDiv returns round(num/den) with halves rounded up for non-negative inputs.
func roundDiv(num, den int) int {
	if den <= 0 || num <= 0 {
		return 0
	}
	return (2*num + den) / (2 * den)
}

// AverageScore is the rounded mean score, 0 for no attempts.
func AverageScore(attempts []domain.QuizAttempt) int {
	sum := 0
	for _, a := range attempts {
		sum += a.Score
	}
	return roundDiv(sum, len(attempts))
}

// AttendanceRate is the rounded percentage of attempts that marked attendance.
func AttendanceRate(attempts []domain.QuizAttempt) int {
	marked := 0
	for _, a := range attempts {
		if a.AttendanceMarked {
			marked++
		}
	}
	return RoundPercent(marked, len(attempts))
}

// CompletionRate is the rounded percentage of the catalog covered by attempts.
func CompletionRate(userAttempts []domain.QuizAttempt, catalogSize int) int {
	return RoundPercent(len(userAttempts), catalogSize)
}

// TotalTime sums TimeTaken in seconds.
func TotalTime(attempts []domain.QuizAttempt) int {
	total := 0
	for _, a := range attempts {
		total += a.TimeTaken
	}
	return total
}

// SortByDateDesc orders attempts newest first; ties keep ledger order.
func SortByDateDesc(attempts []domain.QuizAttempt) {
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].Date.After(attempts[j].Date)
	})
}

// Recent returns up to n attempts, newest first.
func Recent(attempts []domain.QuizAttempt, n int) []domain.QuizAttempt {
	out := append([]domain.QuizAttempt(nil), attempts...)
	SortByDateDesc(out)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
