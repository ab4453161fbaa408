package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"prepwise/internal/auth"
	"prepwise/internal/core"
	"prepwise/internal/persistence"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	User *core.User `json:"user"`
}

// handleRegister handles POST /api/auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, persistence.ErrUsernameTaken) {
			s.respondError(w, http.StatusConflict, "username already taken")
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, userResponse{User: user})
}

// handleLogin handles POST /api/auth/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.respondError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.log.Error("login failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, s.auth.NewSessionCookie(token))
	s.respondJSON(w, http.StatusOK, userResponse{User: user})
}

// handleLogout handles POST /api/auth/logout.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		s.auth.Logout(cookie.Value)
	}
	http.SetCookie(w, auth.ExpiredSessionCookie())
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// handleMe handles GET /api/auth/me.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.SessionCookie)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := s.auth.UserForToken(r.Context(), cookie.Value)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	s.respondJSON(w, http.StatusOK, userResponse{User: user})
}
