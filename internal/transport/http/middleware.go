package http

import (
	"context"
	"net/http"
	"strings"

	"eduquiz-service/internal/app"
	"eduquiz-service/internal/domain"
)

type contextKey string

const userKey contextKey = "user"

type authenticator struct {
	tokens *app.TokenIssuer
}

// Middleware resolves the bearer token from the Authorization header, or from
// the token query parameter for websocket clients.
func (a *authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("token")
		if header := r.Header.Get("Authorization"); header != "" {
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				writeError(w, domain.ErrUnauthenticated)
				return
			}
			raw = token
		}
		if raw == "" {
			writeError(w, domain.ErrUnauthenticated)
			return
		}
		user, err := a.tokens.Parse(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// requirePermission rejects requests whose role lacks perm.
func requirePermission(perm domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := domain.Authorize(currentUser(r).Role, perm); err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func currentUser(r *http.Request) domain.User {
	user, _ := r.Context().Value(userKey).(domain.User)
	return user
}
