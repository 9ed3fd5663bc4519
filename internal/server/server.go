// Package server exposes the storefront REST API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"littleforest/internal/app"
	"littleforest/internal/metrics"
	"littleforest/internal/ratelimit"
	"littleforest/internal/security"
	"littleforest/internal/util"
)

const maxBodyBytes = 1 << 20

// Config wires the HTTP server. Only App is required.
type Config struct {
	App                *app.App
	Metrics            *metrics.Metrics
	LoginLimiter       ratelimit.Limiter
	Alerter            *security.AuditAlerter
	TrustedProxies     *util.TrustedProxies
	CORSAllowedOrigins []string
	// RequireAdminToken gates privileged routes behind an admin bearer token.
	RequireAdminToken bool
}

// Server exposes HTTP endpoints for the storefront.
type Server struct {
	app          *app.App
	mux          *http.ServeMux
	metrics      *metrics.Metrics
	loginLimiter ratelimit.Limiter
	alerter      *security.AuditAlerter
	trusted      *util.TrustedProxies
	corsOrigins  []string
	requireAdmin bool
}

func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: app is required")
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}
	limiter := cfg.LoginLimiter
	if limiter == nil {
		l, err := ratelimit.NewMemoryLimiter(10, time.Minute)
		if err != nil {
			return nil, err
		}
		limiter = l
	}
	s := &Server{
		app:          cfg.App,
		mux:          http.NewServeMux(),
		metrics:      m,
		loginLimiter: limiter,
		alerter:      cfg.Alerter,
		trusted:      cfg.TrustedProxies,
		corsOrigins:  cfg.CORSAllowedOrigins,
		requireAdmin: cfg.RequireAdminToken,
	}
	s.routes()
	return s, nil
}

// Router returns the mux wrapped in the middleware chain, outermost first:
// request id, request log, metrics, security headers, CORS.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = util.WithCORS(s.corsOrigins)(h)
	h = util.WithSecurityHeaders(h)
	h = s.metrics.Instrument(h)
	h = util.WithRequestLog(s.trusted, h)
	return util.WithRequestID(h)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /readyz", s.handleReady)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.HandleFunc("POST /api/admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("POST /api/admin/verify", s.handleAdminVerify)
	s.mux.HandleFunc("POST /api/admin/logout", s.handleAdminLogout)

	products := s.productResource()
	s.mux.HandleFunc("GET /api/products", products.list)
	s.mux.HandleFunc("GET /api/products/{id}", products.get)
	s.mux.Handle("POST /api/products", s.adminOnly(products.create))
	s.mux.Handle("PUT /api/products/{id}", s.adminOnly(products.update))
	s.mux.Handle("PATCH /api/products/{id}", s.adminOnly(products.update))
	s.mux.Handle("DELETE /api/products/{id}", s.adminOnly(products.remove))

	content := s.contentResource()
	s.mux.HandleFunc("GET /api/content", content.list)
	s.mux.HandleFunc("GET /api/content/{id}", content.get)
	s.mux.Handle("POST /api/content", s.adminOnly(content.create))
	s.mux.Handle("PUT /api/content/{id}", s.adminOnly(content.update))
	s.mux.Handle("PATCH /api/content/{id}", s.adminOnly(content.update))
	s.mux.Handle("DELETE /api/content/{id}", s.adminOnly(content.remove))

	messages := s.messageResource()
	s.mux.Handle("GET /api/contact-messages", s.adminOnly(messages.list))
	s.mux.Handle("GET /api/contact-messages/{id}", s.adminOnly(messages.get))
	s.mux.HandleFunc("POST /api/contact-messages", messages.create)
	s.mux.HandleFunc("POST /api/contact", messages.create)
	s.mux.Handle("PUT /api/contact-messages/{id}", s.adminOnly(messages.update))
	s.mux.Handle("PATCH /api/contact-messages/{id}", s.adminOnly(messages.update))
	s.mux.Handle("DELETE /api/contact-messages/{id}", s.adminOnly(messages.remove))

	testimonials := s.testimonialResource()
	s.mux.HandleFunc("GET /api/testimonials", testimonials.list)
	s.mux.HandleFunc("GET /api/testimonials/{id}", testimonials.get)
	s.mux.Handle("POST /api/testimonials", s.adminOnly(testimonials.create))
	s.mux.Handle("PUT /api/testimonials/{id}", s.adminOnly(testimonials.update))
	s.mux.Handle("PATCH /api/testimonials/{id}", s.adminOnly(testimonials.update))
	s.mux.Handle("DELETE /api/testimonials/{id}", s.adminOnly(testimonials.remove))

	profiles := s.profileResource()
	s.mux.Handle("GET /api/profiles", s.adminOnly(profiles.list))
	s.mux.HandleFunc("GET /api/profiles/{id}", profiles.get)
	s.mux.HandleFunc("GET /api/profiles/email/{email}", s.handleProfileByEmail)
	s.mux.HandleFunc("POST /api/profiles", profiles.create)
	s.mux.Handle("PUT /api/profiles/{id}", s.adminOnly(profiles.update))
	s.mux.Handle("PATCH /api/profiles/{id}", s.adminOnly(profiles.update))
	s.mux.Handle("DELETE /api/profiles/{id}", s.adminOnly(profiles.remove))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.app.Ping(ctx); err != nil {
		util.LoggerFromContext(r.Context()).Error("readiness check failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// adminOnly requires a verified admin bearer token when the server is
// configured to enforce one.
func (s *Server) adminOnly(next http.HandlerFunc) http.Handler {
	if !s.requireAdmin {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.audit(r, security.EventAdminGuard, security.OutcomeFail, "reason", "missing_token")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		admin, err := s.app.VerifyAdmin(r.Context(), token)
		switch {
		case err == nil:
		case isAuthFailure(err):
			s.audit(r, security.EventAdminGuard, security.OutcomeFail, "reason", err.Error())
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		default:
			util.LoggerFromContext(r.Context()).Error("admin guard failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		s.audit(r, security.EventAdminGuard, security.OutcomeSuccess, "admin_id", admin.ID)
		next(w, r)
	})
}

func isAuthFailure(err error) bool {
	return errors.Is(err, app.ErrNoToken) ||
		errors.Is(err, app.ErrInvalidToken) ||
		errors.Is(err, app.ErrUnauthorized)
}

// audit logs a security_event and feeds failures to the alerter.
func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	ip := util.ClientIP(r, s.trusted)
	logger := util.LoggerFromContext(r.Context())
	logAttrs := append([]any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", ip,
	}, attrs...)
	if outcome == security.OutcomeSuccess {
		logger.Info("security_event", logAttrs...)
		return
	}
	logger.Warn("security_event", logAttrs...)

	result, err := s.alerter.Observe(r.Context(), event, outcome, ip)
	if err != nil {
		logger.Error("security alert counter failed", "event", event, "err", err)
		return
	}
	if result.Triggered {
		logger.Warn("security_alert",
			"event", event,
			"outcome", outcome,
			"ip", ip,
			"count", result.Count,
			"threshold", result.Threshold,
			"window", result.Window.String(),
		)
	}
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter ratelimit.Limiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trusted)
	if limiter.Allow(r.Context(), key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
