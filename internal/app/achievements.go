package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eduquiz-service/internal/domain"
)

// Rule names understood by the tracker.
const (
	RuleFirstQuiz      = "first-quiz"
	RulePerfectScore   = "perfect-score"
	RuleQuizCount      = "quiz-count"
	RuleSpeed          = "speed"
	RuleSubjectExpert  = "subject-expert"
	RuleDailyStreak    = "daily-streak"
	RuleEarlyBird      = "early-bird"
	RuleFullAttendance = "full-attendance"
)

const (
	subjectExpertScore = 90
	earlyBirdHour      = 8
	attendanceWindow   = 30 * 24 * time.Hour
)

// AchievementDefinition is the template of an achievement and the rule that
// drives it. Target zero means a one-shot achievement without progress.
type AchievementDefinition struct {
	ID          string                     `yaml:"id"`
	Title       string                     `yaml:"title"`
	Description string                     `yaml:"description"`
	Icon        string                     `yaml:"icon"`
	Category    domain.AchievementCategory `yaml:"category"`
	Rule        string                     `yaml:"rule"`
	Target      int                        `yaml:"target"`
}

func (d AchievementDefinition) locked() domain.Achievement {
	a := domain.Achievement{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Icon:        d.Icon,
		Category:    d.Category,
	}
	if d.Target > 0 {
		a.Progress = &domain.Progress{Current: 0, Target: d.Target}
	}
	return a
}

// ruleInput is what a rule sees: the new attempt plus the user's history
// (newest first, including the new attempt).
type ruleInput struct {
	latest  domain.QuizAttempt
	history []domain.QuizAttempt
	quizzes map[string]domain.Quiz
	loc     *time.Location
}

// ruleFunc returns the progress value and whether the rule fired.
type ruleFunc func(in ruleInput) (current int, fired bool)

var rules = map[string]ruleFunc{
	RuleFirstQuiz: func(in ruleInput) (int, bool) {
		return len(in.history), len(in.history) >= 1
	},
	RulePerfectScore: func(in ruleInput) (int, bool) {
		best := 0
		for _, a := range in.history {
			if a.Score > best {
				best = a.Score
			}
		}
		return best, in.latest.Score == 100
	},
	RuleQuizCount: func(in ruleInput) (int, bool) {
		return len(in.history), false
	},
	RuleSpeed: func(in ruleInput) (int, bool) {
		quiz, ok := in.quizzes[in.latest.QuizID]
		if !ok {
			return 0, false
		}
		return 0, in.latest.TimeTaken*2 < quiz.DurationSeconds()
	},
	RuleSubjectExpert: func(in ruleInput) (int, bool) {
		perSubject := make(map[string]map[string]struct{})
		for _, a := range in.history {
			quiz, ok := in.quizzes[a.QuizID]
			if !ok || a.Score <= subjectExpertScore {
				continue
			}
			if perSubject[quiz.Subject] == nil {
				perSubject[quiz.Subject] = make(map[string]struct{})
			}
			perSubject[quiz.Subject][quiz.ID] = struct{}{}
		}
		best := 0
		for _, ids := range perSubject {
			if len(ids) > best {
				best = len(ids)
			}
		}
		return best, false
	},
	RuleDailyStreak: func(in ruleInput) (int, bool) {
		return dailyStreak(in.history, in.latest.Date, in.loc), false
	},
	RuleEarlyBird: func(in ruleInput) (int, bool) {
		return 0, in.latest.Date.In(in.loc).Hour() < earlyBirdHour
	},
	RuleFullAttendance: func(in ruleInput) (int, bool) {
		since := in.latest.Date.Add(-attendanceWindow)
		window := make([]domain.QuizAttempt, 0, len(in.history))
		earliest := in.latest.Date
		for _, a := range in.history {
			if a.Date.Before(earliest) {
				earliest = a.Date
			}
			if !a.Date.Before(since) {
				window = append(window, a)
			}
		}
		rate := AttendanceRate(window)
		// the badge cannot complete before a full month of history exists
		if rate >= 100 && earliest.After(since) {
			rate = 99
		}
		return rate, false
	},
}

// dailyStreak counts consecutive calendar days with at least one attempt,
// ending on the day of until.
func dailyStreak(history []domain.QuizAttempt, until time.Time, loc *time.Location) int {
	days := make(map[string]struct{}, len(history))
	for _, a := range history {
		days[a.Date.In(loc).Format(time.DateOnly)] = struct{}{}
	}
	streak := 0
	day := until.In(loc)
	for {
		if _, ok := days[day.Format(time.DateOnly)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// AchievementSummary aggregates unlock counts.
type AchievementSummary struct {
	Unlocked   int `json:"unlocked"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// AchievementTracker derives per-user achievements from the attempt ledger.
type AchievementTracker struct {
	definitions []AchievementDefinition
	store       AchievementStore
	catalog     *Catalog
	loc         *time.Location
	now         func() time.Time

	mu sync.Mutex
}

func NewAchievementTracker(definitions []AchievementDefinition, store AchievementStore, catalog *Catalog, loc *time.Location) (*AchievementTracker, error) {
	seen := make(map[string]struct{}, len(definitions))
	for _, d := range definitions {
		if _, ok := rules[d.Rule]; !ok {
			return nil, fmt.Errorf("achievement %s: unknown rule %q", d.ID, d.Rule)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("achievement %s: duplicate id", d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AchievementTracker{
		definitions: definitions,
		store:       store,
		catalog:     catalog,
		loc:         loc,
		now:         time.Now,
	}, nil
}

// WithClock is test-only for deterministic explicit unlocks.
func (t *AchievementTracker) WithClock(now func() time.Time) *AchievementTracker {
	t.now = now
	return t
}

// AttemptRecorded re-evaluates every rule for the attempt's user.
func (t *AchievementTracker) AttemptRecorded(ctx context.Context, attempt domain.QuizAttempt, history []domain.QuizAttempt) error {
	quizzes, err := t.catalog.index(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	list, err := t.loadLocked(ctx, attempt.UserID)
	if err != nil {
		return err
	}
	byID := t.rulesByID()
	in := ruleInput{latest: attempt, history: history, quizzes: quizzes, loc: t.loc}
	for i := range list {
		def, ok := byID[list[i].ID]
		if !ok {
			continue
		}
		current, fired := rules[def.Rule](in)
		applyProgress(&list[i], current, fired, attempt.Date)
	}
	return t.store.Save(ctx, attempt.UserID, list)
}

// applyProgress moves an achievement forward; unlocking is one-way and
// freezes progress at its target.
func applyProgress(a *domain.Achievement, current int, fired bool, at time.Time) {
	if a.Unlocked() {
		if a.Progress != nil {
			a.Progress.Current = a.Progress.Target
		}
		return
	}
	if a.Progress != nil {
		if current > a.Progress.Target {
			current = a.Progress.Target
		}
		a.Progress.Current = current
		if current >= a.Progress.Target {
			fired = true
		}
		if fired {
			a.Progress.Current = a.Progress.Target
		}
	}
	if fired {
		unlocked := at
		a.UnlockedAt = &unlocked
	}
}

// List returns the user's achievements, optionally filtered by category.
func (t *AchievementTracker) List(ctx context.Context, userID string, category domain.AchievementCategory) ([]domain.Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	list, err := t.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return list, nil
	}
	out := make([]domain.Achievement, 0, len(list))
	for _, a := range list {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out, nil
}

// Summary counts unlocked achievements for the user.
func (t *AchievementTracker) Summary(ctx context.Context, userID string) (AchievementSummary, error) {
	list, err := t.List(ctx, userID, "")
	if err != nil {
		return AchievementSummary{}, err
	}
	unlocked := 0
	for _, a := range list {
		if a.Unlocked() {
			unlocked++
		}
	}
	return AchievementSummary{
		Unlocked:   unlocked,
		Total:      len(list),
		Percentage: RoundPercent(unlocked, len(list)),
	}, nil
}

// Unlock explicitly unlocks an achievement. It reports false if the
// achievement was already unlocked.
func (t *AchievementTracker) Unlock(ctx context.Context, userID, achievementID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	list, err := t.loadLocked(ctx, userID)
	if err != nil {
		return false, err
	}
	i := indexOfAchievement(list, achievementID)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", domain.ErrAchievementNotFound, achievementID)
	}
	if list[i].Unlocked() {
		return false, nil
	}
	applyProgress(&list[i], 0, true, t.now())
	return true, t.store.Save(ctx, userID, list)
}

// UpdateProgress sets a counter achievement's progress, unlocking it once the
// target is reached.
func (t *AchievementTracker) UpdateProgress(ctx context.Context, userID, achievementID string, current int) (domain.Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	list, err := t.loadLocked(ctx, userID)
	if err != nil {
		return domain.Achievement{}, err
	}
	i := indexOfAchievement(list, achievementID)
	if i < 0 {
		return domain.Achievement{}, fmt.Errorf("%w: %s", domain.ErrAchievementNotFound, achievementID)
	}
	if list[i].Progress == nil {
		return domain.Achievement{}, domain.NewValidationError("progress", fmt.Sprintf("achievement %s has no progress counter", achievementID))
	}
	if current < 0 {
		return domain.Achievement{}, domain.NewValidationError("progress", "must not be negative")
	}
	applyProgress(&list[i], current, false, t.now())
	if err := t.store.Save(ctx, userID, list); err != nil {
		return domain.Achievement{}, err
	}
	return list[i], nil
}

func (t *AchievementTracker) loadLocked(ctx context.Context, userID string) ([]domain.Achievement, error) {
	list, ok, err := t.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	if !ok {
		list = make([]domain.Achievement, 0, len(t.definitions))
	}
	// definitions added after the user's list was first stored start locked
	for _, d := range t.definitions {
		if indexOfAchievement(list, d.ID) < 0 {
			list = append(list, d.locked())
		}
	}
	return list, nil
}

func (t *AchievementTracker) rulesByID() map[string]AchievementDefinition {
	out := make(map[string]AchievementDefinition, len(t.definitions))
	for _, d := range t.definitions {
		out[d.ID] = d
	}
	return out
}

func indexOfAchievement(list []domain.Achievement, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
