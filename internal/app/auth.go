package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"eduquiz-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CurrentUserKey is the KV key holding the persisted session.
const CurrentUserKey = "current_user"

// AuthService authenticates users against the user store. When a KV store is
// attached the resulting session is persisted under CurrentUserKey.
type AuthService struct {
	users    UserStore
	sessions KVStore
	tokens   *TokenIssuer
	validate *validator.Validate
	newID    func() string
	cost     int
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithSessionStore persists the active session (local client mode).
func WithSessionStore(kv KVStore) AuthOption {
	return func(a *AuthService) { a.sessions = kv }
}

// WithTokenIssuer attaches bearer tokens to sessions.
func WithTokenIssuer(tokens *TokenIssuer) AuthOption {
	return func(a *AuthService) { a.tokens = tokens }
}

// WithHashCost sets the bcrypt cost for new passwords.
func WithHashCost(cost int) AuthOption {
	return func(a *AuthService) { a.cost = cost }
}

func NewAuthService(users UserStore, opts ...AuthOption) *AuthService {
	a := &AuthService{
		users:    users,
		validate: newValidator(),
		newID:    uuid.NewString,
		cost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login finds the user with email and role and checks the password.
func (a *AuthService) Login(ctx context.Context, email, password string, role domain.Role) (domain.Session, error) {
	user, err := a.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, err
	}
	if user.Role != role {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	return a.open(ctx, user)
}

// Register creates a user and logs it in.
func (a *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (domain.Session, error) {
	email = normalizeEmail(email)
	in := registration{Name: strings.TrimSpace(name), Email: email, Password: password}
	if err := a.validate.Struct(in); err != nil {
		return domain.Session{}, validationError(err)
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return domain.Session{}, err
	}
	if _, err := a.users.FindByEmail(ctx, email); err == nil {
		return domain.Session{}, domain.ErrEmailAlreadyInUse
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return domain.Session{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:           a.newID(),
		Name:         in.Name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}
	if err := a.users.Add(ctx, user); err != nil {
		return domain.Session{}, err
	}
	return a.open(ctx, user)
}

// Logout clears the persisted session.
func (a *AuthService) Logout(ctx context.Context) error {
	if a.sessions == nil {
		return nil
	}
	return a.sessions.Delete(ctx, CurrentUserKey)
}

// Current returns the persisted session or domain.ErrUnauthenticated.
func (a *AuthService) Current(ctx context.Context) (domain.Session, error) {
	if a.sessions == nil {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	raw, ok, err := a.sessions.Get(ctx, CurrentUserKey)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (a *AuthService) open(ctx context.Context, user domain.User) (domain.Session, error) {
	user.PasswordHash = nil
	session := domain.Session{User: user}
	if a.tokens != nil {
		token, err := a.tokens.Issue(user)
		if err != nil {
			return domain.Session{}, err
		}
		session.Token = token
	}
	if a.sessions != nil {
		raw, err := json.Marshal(session)
		if err != nil {
			return domain.Session{}, fmt.Errorf("encode session: %w", err)
		}
		if err := a.sessions.Set(ctx, CurrentUserKey, raw); err != nil {
			return domain.Session{}, fmt.Errorf("persist session: %w", err)
		}
	}
	return session, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
