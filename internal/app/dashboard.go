package app

import (
	"context"
	"errors"

	"eduquiz-service/internal/domain"
)

const (
	studentRecentAttempts = 3
	teacherRecentAttempts = 5
)

// StudentDashboard summarizes one student's history.
type StudentDashboard struct {
	CompletedQuizzes int                  `json:"completedQuizzes"`
	TotalQuizzes     int                  `json:"totalQuizzes"`
	AverageScore     int                  `json:"averageScore"`
	TotalTime        int                  `json:"totalTime"`
	AttendanceRate   int                  `json:"attendanceRate"`
	CompletionRate   int                  `json:"completionRate"`
	Upcoming         []domain.Quiz        `json:"upcoming"`
	Recent           []domain.QuizAttempt `json:"recent"`
}

// PerformancePoint is one attempt on the performance chart.
type PerformancePoint struct {
	AttemptID string `json:"attemptId"`
	QuizTitle string `json:"quizTitle"`
	Subject   string `json:"subject"`
	Score     int    `json:"score"`
	Minutes   int    `json:"minutes"`
}

// Performance is the student's score history.
type Performance struct {
	Points         []PerformancePoint `json:"points"`
	AverageScore   int                `json:"averageScore"`
	CompletionRate int                `json:"completionRate"`
}

// Submission is an attempt decorated for teacher review.
type Submission struct {
	domain.QuizAttempt
	QuizTitle   string `json:"quizTitle"`
	StudentName string `json:"studentName"`
}

// TeacherDashboard summarizes all submissions.
type TeacherDashboard struct {
	TotalQuizzes      int            `json:"totalQuizzes"`
	TotalStudents     int            `json:"totalStudents"`
	AverageScore      int            `json:"averageScore"`
	AttendanceRate    int            `json:"attendanceRate"`
	RecentSubmissions []Submission   `json:"recentSubmissions"`
	CompletedByQuiz   map[string]int `json:"completedByQuiz"`
}

// Share is a count with its rounded percentage of the whole.
type Share struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// AdminDashboard summarizes the whole system.
type AdminDashboard struct {
	TotalUsers    int     `json:"totalUsers"`
	UsersByRole   []Share `json:"usersByRole"`
	TotalQuizzes  int     `json:"totalQuizzes"`
	TotalAttempts int     `json:"totalAttempts"`
	AverageScore  int     `json:"averageScore"`
	BySubject     []Share `json:"bySubject"`
	ByDifficulty  []Share `json:"byDifficulty"`
}

// Dashboards derives role dashboards from the catalog and ledger. Nothing is
// cached; every call recomputes from the ledger.
type Dashboards struct {
	catalog *Catalog
	ledger  *AttemptLedger
	users   UserStore
}

func NewDashboards(catalog *Catalog, ledger *AttemptLedger, users UserStore) *Dashboards {
	return &Dashboards{catalog: catalog, ledger: ledger, users: users}
}

// Student builds the dashboard of userID.
func (d *Dashboards) Student(ctx context.Context, userID string) (StudentDashboard, error) {
	quizzes, err := d.catalog.ListQuizzes(ctx)
	if err != nil {
		return StudentDashboard{}, err
	}
	attempts, err := d.ledger.ListByUser(ctx, userID)
	if err != nil {
		return StudentDashboard{}, err
	}

	attempted := make(map[string]struct{}, len(attempts))
	for _, a := range attempts {
		attempted[a.QuizID] = struct{}{}
	}
	upcoming := make([]domain.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if _, ok := attempted[q.ID]; !ok {
			upcoming = append(upcoming, q)
		}
	}

	return StudentDashboard{
		CompletedQuizzes: len(attempts),
		TotalQuizzes:     len(quizzes),
		AverageScore:     AverageScore(attempts),
		TotalTime:        TotalTime(attempts),
		AttendanceRate:   AttendanceRate(attempts),
		CompletionRate:   CompletionRate(attempts, len(quizzes)),
		Upcoming:         upcoming,
		Recent:           Recent(attempts, studentRecentAttempts),
	}, nil
}

// Performance lists the student's attempts oldest first for charting.
func (d *Dashboards) Performance(ctx context.Context, userID string) (Performance, error) {
	quizzes, err := d.catalog.index(ctx)
	if err != nil {
		return Performance{}, err
	}
	attempts, err := d.ledger.ListByUser(ctx, userID)
	if err != nil {
		return Performance{}, err
	}
	points := make([]PerformancePoint, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		quiz := quizzes[a.QuizID]
		points = append(points, PerformancePoint{
			AttemptID: a.ID,
			QuizTitle: titleOr(quiz),
			Subject:   quiz.Subject,
			Score:     a.Score,
			Minutes:   roundDiv(a.TimeTaken, 60),
		})
	}
	return Performance{
		Points:         points,
		AverageScore:   AverageScore(attempts),
		CompletionRate: CompletionRate(attempts, len(quizzes)),
	}, nil
}

// Teacher builds the submissions overview.
func (d *Dashboards) Teacher(ctx context.Context) (TeacherDashboard, error) {
	quizzes, err := d.catalog.ListQuizzes(ctx)
	if err != nil {
		return TeacherDashboard{}, err
	}
	byID := make(map[string]domain.Quiz, len(quizzes))
	completed := make(map[string]int, len(quizzes))
	for _, q := range quizzes {
		byID[q.ID] = q
		completed[q.ID] = 0
	}
	attempts, err := d.ledger.All(ctx)
	if err != nil {
		return TeacherDashboard{}, err
	}
	students := make(map[string]struct{})
	for _, a := range attempts {
		students[a.UserID] = struct{}{}
		if _, ok := completed[a.QuizID]; ok {
			completed[a.QuizID]++
		}
	}

	recent := Recent(attempts, teacherRecentAttempts)
	submissions := make([]Submission, 0, len(recent))
	for _, a := range recent {
		name, err := d.userName(ctx, a.UserID)
		if err != nil {
			return TeacherDashboard{}, err
		}
		submissions = append(submissions, Submission{
			QuizAttempt: a,
			QuizTitle:   titleOr(byID[a.QuizID]),
			StudentName: name,
		})
	}

	return TeacherDashboard{
		TotalQuizzes:      len(quizzes),
		TotalStudents:     len(students),
		AverageScore:      AverageScore(attempts),
		AttendanceRate:    AttendanceRate(attempts),
		RecentSubmissions: submissions,
		CompletedByQuiz:   completed,
	}, nil
}

// Admin builds the system-wide overview.
func (d *Dashboards) Admin(ctx context.Context) (AdminDashboard, error) {
	quizzes, err := d.catalog.ListQuizzes(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	attempts, err := d.ledger.All(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	users, err := d.users.List(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}

	roleCounts := make(map[string]int, len(domain.Roles))
	for _, u := range users {
		roleCounts[string(u.Role)]++
	}
	roleNames := make([]string, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		roleNames = append(roleNames, string(r))
	}

	subjects := make(map[string]int)
	subjectOrder := make([]string, 0)
	difficulties := make(map[string]int)
	for _, q := range quizzes {
		if _, ok := subjects[q.Subject]; !ok {
			subjectOrder = append(subjectOrder, q.Subject)
		}
		subjects[q.Subject]++
		difficulties[string(q.Difficulty)]++
	}
	difficultyOrder := []string{
		string(domain.DifficultyEasy),
		string(domain.DifficultyMedium),
		string(domain.DifficultyHard),
	}

	return AdminDashboard{
		TotalUsers:    len(users),
		UsersByRole:   shares(roleNames, roleCounts, len(users)),
		TotalQuizzes:  len(quizzes),
		TotalAttempts: len(attempts),
		AverageScore:  AverageScore(attempts),
		BySubject:     shares(subjectOrder, subjects, len(quizzes)),
		ByDifficulty:  shares(difficultyOrder, difficulties, len(quizzes)),
	}, nil
}

func (d *Dashboards) userName(ctx context.Context, userID string) (string, error) {
	u, err := d.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "Unknown Student", nil
	}
	if err != nil {
		return "", err
	}
	return u.Name, nil
}

func shares(order []string, counts map[string]int, total int) []Share {
	out := make([]Share, 0, len(order))
	for _, name := range order {
		out = append(out, Share{Name: name, Count: counts[name], Percentage: RoundPercent(counts[name], total)})
	}
	return out
}

func titleOr(q domain.Quiz) string {
	if q.Title == "" {
		return "Unknown Quiz"
	}
	return q.Title
}
