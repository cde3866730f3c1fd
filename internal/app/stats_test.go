package app_test

import (
	"testing"
	"time"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
)

func scored(scores ...int) []domain.QuizAttempt {
	out := make([]domain.QuizAttempt, 0, len(scores))
	for i, s := range scores {
		out = append(out, domain.QuizAttempt{
			ID:               string(rune('a' + i)),
			Score:            s,
			TimeTaken:        60 * (i + 1),
			Date:             baseTime.Add(time.Duration(i) * time.Hour),
			AttendanceMarked: s >= domain.AttendanceThreshold,
		})
	}
	return out
}

func TestRoundPercent(t *testing.T) {
	cases := []struct{ num, den, want int }{
		{24, 30, 80},
		{0, 0, 0},
		{3, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{119, 200, 60},
		{3, 8, 38},
	}
	for _, tc := range cases {
		if got := app.RoundPercent(tc.num, tc.den); got != tc.want {
			t.Fatalf("RoundPercent(%d, %d) = %d, want %d", tc.num, tc.den, got, tc.want)
		}
	}
}

func TestDerivedStatistics(t *testing.T) {
	if got := app.AverageScore(nil); got != 0 {
		t.Fatalf("average of nothing: %d", got)
	}
	if got := app.AverageScore(scored(80, 60, 40)); got != 60 {
		t.Fatalf("average of 80,60,40: %d", got)
	}
	if got := app.AverageScore(scored(1, 2)); got != 2 {
		t.Fatalf("1.5 should round up, got %d", got)
	}
	if got := app.AttendanceRate(scored(59, 60, 100)); got != 67 {
		t.Fatalf("attendance rate: %d", got)
	}
	if got := app.AttendanceRate(nil); got != 0 {
		t.Fatalf("attendance of nothing: %d", got)
	}
	if got := app.CompletionRate(scored(10, 20, 30), 8); got != 38 {
		t.Fatalf("completion rate: %d", got)
	}
	if got := app.CompletionRate(scored(10), 0); got != 0 {
		t.Fatalf("completion with empty catalog: %d", got)
	}
	if got := app.TotalTime(scored(10, 20, 30)); got != 360 {
		t.Fatalf("total time: %d", got)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	attempts := scored(10, 20, 30, 40)
	recent := app.Recent(attempts, 3)
	if len(recent) != 3 || recent[0].Score != 40 || recent[2].Score != 20 {
		t.Fatalf("unexpected recent %+v", recent)
	}
	if attempts[0].Score != 10 {
		t.Fatalf("Recent must not reorder its input")
	}
}
