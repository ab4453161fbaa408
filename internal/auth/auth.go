// Package auth implements password hashing and opaque-token sessions for
// the HTTP API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"prepwise/internal/cache"
	"prepwise/internal/core"
	"prepwise/internal/persistence"
)

// SessionCookie is the name of the session cookie issued on login.
const SessionCookie = "prepwise_session"

const (
	minPasswordLen = 8
	minUsernameLen = 3
	maxUsernameLen = 32
)

var (
	// ErrInvalidCredentials is returned on bad username/password pairs.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNoSession is returned when a request carries no valid session.
	ErrNoSession = errors.New("no active session")
)

// HashPassword hashes a plaintext password with bcrypt at default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateRegistration checks username and password shape before any
// storage work happens.
func ValidateRegistration(username, password string) error {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

// Service ties the user store and session cache together behind the auth
// API surface.
type Service struct {
	users      persistence.UserStore
	sessions   *cache.Cache
	sessionTTL time.Duration
}

// NewService creates the auth service. Sessions are process-local: a
// restart logs everyone out.
func NewService(users persistence.UserStore, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &Service{
		users:      users,
		sessions:   cache.New(),
		sessionTTL: sessionTTL,
	}
}

// Register validates the input, hashes the password and stores the user.
func (s *Service) Register(ctx context.Context, username, password string) (*core.User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateRegistration(username, password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &core.User{
		ID:        uuid.New(),
		Username:  username,
		Password:  hash,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, username, password string) (*core.User, string, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, persistence.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !CheckPassword(user.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	s.sessions.Set(token, user.ID, s.sessionTTL)
	return user, token, nil
}

// Logout destroys the session token. Unknown tokens are a no-op.
func (s *Service) Logout(token string) {
	s.sessions.Delete(token)
}

// UserForToken resolves a session token to its user.
func (s *Service) UserForToken(ctx context.Context, token string) (*core.User, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	val, ok := s.sessions.Get(token)
	if !ok {
		return nil, ErrNoSession
	}
	user, err := s.users.GetUserByID(ctx, val.(uuid.UUID))
	if err != nil {
		return nil, ErrNoSession
	}
	return user, nil
}

// NewSessionCookie builds the HTTP cookie carrying the session token.
func (s *Service) NewSessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie builds the cookie that clears the session on logout.
func ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
