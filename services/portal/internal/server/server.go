package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"givelife/internal/metrics"
	"givelife/internal/ratelimit"
	"givelife/internal/util"
	"givelife/pkg/apiclient"
	"givelife/pkg/domain"
	"givelife/pkg/session"
	"givelife/services/portal/internal/app"
)

const maxBodyBytes = 1 << 20

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                        *app.App
	Redis                      *redis.Client
	CookieName                 string
	CookieSecure               bool
	CookieSameSite             http.SameSite
	SessionTTL                 time.Duration
	AllowedOrigins             []string
	TrustedProxies             *util.TrustedProxies
	LoginRateLimitPerMinute    int
	RegisterRateLimitPerMinute int
	Now                        func() time.Time
}

// Server exposes the portal JSON API.
type Server struct {
	app             *app.App
	mux             *http.ServeMux
	cookieName      string
	cookieSecure    bool
	cookieSameSite  http.SameSite
	sessionTTL      time.Duration
	allowedOrigins  []string
	trusted         *util.TrustedProxies
	loginLimiter    *ratelimit.Limiter
	registerLimiter *ratelimit.Limiter
	now             func() time.Time
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: app is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "givelife_session"
	}
	if cfg.CookieSameSite == 0 {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	registerLimit := cfg.RegisterRateLimitPerMinute
	if registerLimit <= 0 {
		registerLimit = 5
	}
	newLimiter := func(name string, limit int) (*ratelimit.Limiter, error) {
		limiter, err := ratelimit.New(cfg.Redis, "givelife:portal:ratelimit:"+name, limit, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	registerLimiter, err := newLimiter("register", registerLimit)
	if err != nil {
		return nil, err
	}
	s := &Server{
		app:             cfg.App,
		mux:             http.NewServeMux(),
		cookieName:      cfg.CookieName,
		cookieSecure:    cfg.CookieSecure,
		cookieSameSite:  cfg.CookieSameSite,
		sessionTTL:      cfg.SessionTTL,
		allowedOrigins:  cfg.AllowedOrigins,
		trusted:         cfg.TrustedProxies,
		loginLimiter:    loginLimiter,
		registerLimiter: registerLimiter,
		now:             cfg.Now,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.Chain(metrics.Middleware(s.mux),
		util.WithRequestID,
		util.WithAccessLog("portal"),
		util.WithSecurityHeaders,
		util.WithCORS(s.allowedOrigins),
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", metrics.Handler())

	// auth
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/register/{role}", s.handleRegister)
	s.mux.HandleFunc("GET /api/auth/session", s.handleSession)
	s.mux.Handle("GET /api/auth/profile", s.authenticated(s.handleProfile))
	s.mux.Handle("PUT /api/auth/profile", s.authenticated(s.handleUpdateProfile))
	s.mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("POST /api/auth/reset", s.handleReset)

	// admin
	admin := []domain.UserRole{domain.RoleAdmin}
	s.mux.Handle("GET /api/admin/hospitals", s.requireRole(admin, s.handleAdminHospitals))
	s.mux.Handle("POST /api/admin/hospitals", s.requireRole(admin, s.handleCreateHospital))
	s.mux.Handle("GET /api/admin/inventory/summary", s.requireRole(admin, s.handleInventorySummary))
	s.mux.Handle("GET /api/admin/inventory/export", s.requireRole(admin, s.handleInventoryExport))
	s.mux.Handle("GET /api/admin/activity", s.requireRole(admin, s.handleAdminActivity))

	// hospitals
	staff := []domain.UserRole{domain.RoleHospital, domain.RoleAdmin}
	s.mux.Handle("GET /api/donors", s.requireRole(staff, s.handleDonors))
	s.mux.Handle("GET /api/hospitals/{id}/inventory", s.ownHospital(s.handleHospitalInventory))
	s.mux.Handle("PUT /api/hospitals/{id}/inventory", s.ownHospital(s.handleUpdateInventory))
	s.mux.Handle("GET /api/hospitals/{id}/appointments", s.ownHospital(s.handleHospitalAppointments))
	s.mux.Handle("GET /api/hospitals/{id}/activity", s.ownHospital(s.handleHospitalActivity))
	s.mux.Handle("GET /api/hospitals/{id}/requests", s.ownHospital(s.handleHospitalRequests))
	s.mux.Handle("POST /api/hospitals/{id}/requests", s.ownHospital(s.handleCreateRequest))
	s.mux.Handle("GET /api/hospitals/{id}/stats", s.ownHospital(s.handleHospitalStats))
	s.mux.Handle("GET /api/hospitals/{id}/slots", s.authenticated(s.handleSlots))
	s.mux.Handle("PATCH /api/appointments/{id}/status", s.requireRole(staff, s.handleAppointmentStatus))

	// donors
	s.mux.Handle("POST /api/appointments", s.requireRole([]domain.UserRole{domain.RoleDonor}, s.handleBookAppointment))
	s.mux.Handle("GET /api/donors/{id}/appointments", s.ownDonor(s.handleDonorAppointments))
	s.mux.Handle("GET /api/donors/{id}/donations", s.ownDonor(s.handleDonorDonations))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// caller is the signed-in user of a request together with its session.
type caller struct {
	session *session.Store
	user    domain.User
	token   string
}

type authHandler func(http.ResponseWriter, *http.Request, caller)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.authorize(w, r)
		if !ok {
			return
		}
		next(w, r, c)
	})
}

func (s *Server) requireRole(roles []domain.UserRole, next authHandler) http.Handler {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, c caller) {
		if !slices.Contains(roles, c.user.Role) {
			s.audit(r, "portal.authorize", "fail", "user_id", c.user.ID, "reason", "forbidden")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r, c)
	})
}

// ownHospital admits admins and the hospital named by the {id} path value.
func (s *Server) ownHospital(next authHandler) http.Handler {
	return s.ownResource(domain.RoleHospital, next)
}

// ownDonor admits the donor named by {id}, plus hospitals and admins.
func (s *Server) ownDonor(next authHandler) http.Handler {
	return s.ownResource(domain.RoleDonor, next, domain.RoleHospital)
}

func (s *Server) ownResource(owner domain.UserRole, next authHandler, also ...domain.UserRole) http.Handler {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, c caller) {
		switch {
		case c.user.Role == domain.RoleAdmin, slices.Contains(also, c.user.Role):
		case c.user.Role == owner && c.user.ID == r.PathValue("id"):
		default:
			s.audit(r, "portal.authorize", "fail", "user_id", c.user.ID, "reason", "not_owner")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r, c)
	})
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (caller, bool) {
	sid, ok := s.sessionID(r)
	if !ok {
		s.audit(r, "portal.authorize", "fail", "reason", "missing_session")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return caller{}, false
	}
	store, err := s.app.OpenSession(r.Context(), sid)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("open session failed", "err", err)
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return caller{}, false
	}
	st := store.State()
	if !st.Authenticated {
		s.audit(r, "portal.authorize", "fail", "reason", "not_authenticated")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return caller{}, false
	}
	return caller{session: store, user: *st.User, token: store.Token()}, true
}

// sessionID returns the portal session id from the cookie. Values that are
// not uuids are ignored.
func (s *Server) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(strings.TrimSpace(cookie.Value))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// startSession issues a fresh session id for a sign-in or registration and
// drops the one the request carried, so a planted cookie never becomes an
// authenticated session.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request) (*session.Store, bool) {
	logger := util.LoggerFromContext(r.Context())
	if old, ok := s.sessionID(r); ok {
		if err := s.app.DropSession(r.Context(), old); err != nil {
			logger.Error("drop previous session failed", "err", err)
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return nil, false
		}
	}
	sid := uuid.NewString()
	store, err := s.app.OpenSession(r.Context(), sid)
	if err != nil {
		logger.Error("open session failed", "err", err)
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return nil, false
	}
	s.setSessionCookie(w, sid, int(s.sessionTTL.Seconds()))
	return store, true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: s.cookieSameSite,
	})
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trusted),
	}
	logAttrs = append(logAttrs, attrs...)
	logger := util.LoggerFromContext(r.Context())
	if outcome == "success" {
		logger.Info("security_event", logAttrs...)
		return
	}
	logger.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.Limiter, action, msg string) bool {
	key := action + "|" + util.ClientIP(r, s.trusted)
	d, err := limiter.Allow(r.Context(), key)
	if err != nil {
		util.LoggerFromContext(r.Context()).Warn("rate limiter unavailable", "action", action, "err", err)
	}
	if d.Allowed {
		return true
	}
	metrics.RateLimited(action)
	retry := max(int(math.Ceil(d.RetryAfter.Seconds())), 1)
	w.Header().Set("Retry-After", fmt.Sprint(retry))
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAPIError maps local validation, session and upstream failures.
func writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.As(err, &apiErr):
		writeError(w, apiErr.Status, apiErr.Message)
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
	default:
		util.LoggerFromContext(r.Context()).Error("givelife api call failed", "err", err)
		writeError(w, http.StatusBadGateway, "givelife api unavailable")
	}
}
