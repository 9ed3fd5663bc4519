package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"littleforest/internal/app"
	"littleforest/internal/security"
	"littleforest/internal/util"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type loginResponse struct {
	Success   bool              `json:"success"`
	User      app.AdminIdentity `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

type verifyResponse struct {
	Success bool              `json:"success"`
	User    app.AdminIdentity `json:"user"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if !s.allowRate(w, r, s.loginLimiter, "Too many login attempts") {
		s.metrics.AdminLogin("rate_limited")
		s.audit(r, security.EventAdminLogin, security.OutcomeRateLimited)
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.audit(r, security.EventAdminLogin, security.OutcomeFail, "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "Login failed")
		return
	}
	session, err := s.app.AdminLogin(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, app.ErrUnauthorizedEmail):
		s.metrics.AdminLogin("unauthorized_email")
		s.audit(r, security.EventAdminLogin, security.OutcomeFail, "reason", "unauthorized_email")
		writeError(w, http.StatusUnauthorized, "Unauthorized email")
		return
	case errors.Is(err, app.ErrInvalidCredentials):
		s.metrics.AdminLogin("invalid_credentials")
		s.audit(r, security.EventAdminLogin, security.OutcomeFail, "reason", "invalid_credentials")
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	default:
		s.metrics.AdminLogin("error")
		util.LoggerFromContext(r.Context()).Error("admin login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	s.metrics.AdminLogin("success")
	s.audit(r, security.EventAdminLogin, security.OutcomeSuccess, "admin_id", session.User.ID)
	writeJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		User:      session.User,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

func (s *Server) handleAdminVerify(w http.ResponseWriter, r *http.Request) {
	token := requestToken(r)
	admin, err := s.app.VerifyAdmin(r.Context(), token)
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, app.ErrNoToken):
			msg = "No token provided"
		case errors.Is(err, app.ErrUnauthorized):
			msg = "Unauthorized"
		case errors.Is(err, app.ErrInvalidToken):
			msg = "Invalid token"
		default:
			util.LoggerFromContext(r.Context()).Error("admin verify failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Verification failed")
			return
		}
		s.audit(r, security.EventAdminVerify, security.OutcomeFail, "reason", err.Error())
		writeError(w, http.StatusUnauthorized, msg)
		return
	}
	s.audit(r, security.EventAdminVerify, security.OutcomeSuccess, "admin_id", admin.ID)
	writeJSON(w, http.StatusOK, verifyResponse{Success: true, User: admin})
}

// handleAdminLogout always reports success; a live token is revoked.
func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.app.AdminLogout(r.Context(), requestToken(r)); err != nil {
		util.LoggerFromContext(r.Context()).Warn("admin logout revoke failed", "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// requestToken reads {"token": ...} from the body, falling back to the
// bearer header.
func requestToken(r *http.Request) string {
	var req tokenRequest
	_ = decodeJSON(r, &req)
	if t := strings.TrimSpace(req.Token); t != "" {
		return t
	}
	t, _ := bearerToken(r)
	return t
}
