package http

import (
	"net/http"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Auth         *app.AuthService
	Tokens       *app.TokenIssuer
	Catalog      *app.Catalog
	Ledger       *app.AttemptLedger
	Dashboards   *app.Dashboards
	Achievements *app.AchievementTracker
	Settings     *app.SettingsService
	Quizzes      *app.QuizService
}

// NewRouter wires the REST routes and the quiz websocket.
func NewRouter(svc Services) http.Handler {
	api := &API{svc: svc}
	ws := NewWSHandler(svc.Quizzes)
	auth := &authenticator{tokens: svc.Tokens}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", api.Login)
		r.Post("/register", api.Register)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.With(requirePermission(domain.PermBrowseQuizzes)).Get("/quizzes", api.ListQuizzes)
		r.With(requirePermission(domain.PermBrowseQuizzes)).Get("/quizzes/{id}", api.GetQuiz)
		r.Get("/attempts/{id}", api.GetAttempt)

		r.Route("/me", func(r chi.Router) {
			r.With(requirePermission(domain.PermViewDashboard)).Get("/dashboard", api.StudentDashboard)
			r.With(requirePermission(domain.PermViewOwnPerformance)).Get("/performance", api.Performance)
			r.With(requirePermission(domain.PermViewOwnPerformance)).Get("/attempts", api.MyAttempts)
			r.With(requirePermission(domain.PermViewAchievements)).Get("/achievements", api.Achievements)
			r.Group(func(r chi.Router) {
				r.Use(requirePermission(domain.PermEditOwnSettings))
				r.Get("/settings", api.GetSettings)
				r.Patch("/settings", api.UpdateSettings)
				r.Post("/settings/reset", api.ResetSettings)
			})
		})

		r.With(requirePermission(domain.PermViewSubmissions)).Get("/teacher/dashboard", api.TeacherDashboard)
		r.With(requirePermission(domain.PermViewSystemStats)).Get("/admin/dashboard", api.AdminDashboard)
		r.With(requirePermission(domain.PermTakeQuiz)).Get("/ws", ws.ServeWS)
	})
	return r
}
