package http

import (
	"net/http"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// API holds the REST handlers.
type API struct {
	svc Services
}

type loginRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := a.svc.Auth.Login(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleStudent
	}
	session, err := a.svc.Auth.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// quizView hides the answer key from roles that cannot manage quizzes.
type quizView struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Subject       string         `json:"subject"`
	Description   string         `json:"description"`
	Duration      int            `json:"duration"`
	Difficulty    string         `json:"difficulty"`
	QuestionCount int            `json:"questionCount"`
	Questions     []questionView `json:"questions,omitempty"`
}

type questionView struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
}

func viewQuiz(q domain.Quiz, withQuestions, withKey bool) quizView {
	v := quizView{
		ID:            q.ID,
		Title:         q.Title,
		Subject:       q.Subject,
		Description:   q.Description,
		Duration:      q.Duration,
		Difficulty:    string(q.Difficulty),
		QuestionCount: len(q.Questions),
	}
	if !withQuestions {
		return v
	}
	v.Questions = make([]questionView, 0, len(q.Questions))
	for _, question := range q.Questions {
		qv := questionView{ID: question.ID, Text: question.Text, Options: question.Options}
		if withKey {
			correct := question.CorrectAnswer
			qv.CorrectAnswer = &correct
		}
		v.Questions = append(v.Questions, qv)
	}
	return v
}

func (a *API) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.svc.Catalog.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]quizView, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, viewQuiz(q, false, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.svc.Catalog.GetQuiz(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	withKey := domain.Authorize(currentUser(r).Role, domain.PermManageQuizzes) == nil
	writeJSON(w, http.StatusOK, viewQuiz(quiz, true, withKey))
}

// GetAttempt returns an attempt to its owner or to a reviewer of submissions.
func (a *API) GetAttempt(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	attempt, err := a.svc.Ledger.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if attempt.UserID != user.ID {
		if err := domain.Authorize(user.Role, domain.PermViewSubmissions); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (a *API) MyAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := a.svc.Ledger.ListByUser(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (a *API) StudentDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := a.svc.Dashboards.Student(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (a *API) Performance(w http.ResponseWriter, r *http.Request) {
	perf, err := a.svc.Dashboards.Performance(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

type achievementsResponse struct {
	Summary      app.AchievementSummary `json:"summary"`
	Achievements []domain.Achievement   `json:"achievements"`
}

func (a *API) Achievements(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	category := domain.AchievementCategory(r.URL.Query().Get("category"))
	list, err := a.svc.Achievements.List(r.Context(), userID, category)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := a.svc.Achievements.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, achievementsResponse{Summary: summary, Achievements: list})
}

func (a *API) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.svc.Settings.Get(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (a *API) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	settings, err := a.svc.Settings.Update(r.Context(), currentUser(r).ID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (a *API) ResetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.svc.Settings.Reset(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (a *API) TeacherDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := a.svc.Dashboards.Teacher(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (a *API) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := a.svc.Dashboards.Admin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
