package server

import (
	"net/http"

	"givelife/pkg/domain"
	"givelife/pkg/session"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.allowRate(w, r, s.loginLimiter, "login", "too many login attempts") {
		s.audit(r, "portal.login", "rate_limited")
		return
	}
	var creds domain.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		s.audit(r, "portal.login", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	store, ok := s.startSession(w, r)
	if !ok {
		return
	}
	if err := store.Login(r.Context(), creds); err != nil {
		s.audit(r, "portal.login", "fail", "reason", err.Error())
		writeAPIError(w, r, err)
		return
	}
	st := store.State()
	s.audit(r, "portal.login", "success", "user_id", st.User.ID, "role", st.User.Role)
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	role, ok := domain.ParseUserRole(r.PathValue("role"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown role")
		return
	}
	if !s.allowRate(w, r, s.registerLimiter, "register", "too many registration attempts") {
		s.audit(r, "portal.register", "rate_limited", "role", role)
		return
	}
	var payload any
	switch role {
	case domain.RoleDonor:
		var reg domain.DonorRegistration
		if err := decodeJSON(r, &reg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		payload = reg
	case domain.RoleHospital:
		var reg domain.HospitalRegistration
		if err := decodeJSON(r, &reg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		payload = reg
	default:
		var reg domain.StaffRegistration
		if err := decodeJSON(r, &reg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		payload = reg
	}
	store, ok := s.startSession(w, r)
	if !ok {
		return
	}
	if err := store.Register(r.Context(), role, payload); err != nil {
		s.audit(r, "portal.register", "fail", "role", role, "reason", err.Error())
		writeAPIError(w, r, err)
		return
	}
	s.audit(r, "portal.register", "success", "role", role)
	writeJSON(w, http.StatusCreated, store.State())
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.sessionID(r)
	if !ok {
		writeJSON(w, http.StatusOK, session.State{Status: session.Status{Phase: session.PhaseIdle}})
		return
	}
	store, err := s.app.OpenSession(r.Context(), sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}
	writeJSON(w, http.StatusOK, store.State())
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, c caller) {
	if err := c.session.GetProfile(r.Context()); err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.session.State().User)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, c caller) {
	var upd domain.ProfileUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := c.session.UpdateProfile(r.Context(), upd); err != nil {
		s.audit(r, "portal.profile.update", "fail", "user_id", c.user.ID, "reason", err.Error())
		writeAPIError(w, r, err)
		return
	}
	s.audit(r, "portal.profile.update", "success", "user_id", c.user.ID)
	writeJSON(w, http.StatusOK, c.session.State())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	state := session.State{Status: session.Status{Phase: session.PhaseSucceeded, Op: session.OpLogout}}
	if sid, ok := s.sessionID(r); ok {
		store, err := s.app.OpenSession(r.Context(), sid)
		if err == nil {
			_ = store.Logout(r.Context())
			state = store.State()
		}
	}
	s.setSessionCookie(w, "", -1)
	s.audit(r, "portal.logout", "success")
	writeJSON(w, http.StatusOK, state)
}

// handleReset clears the status of the caller's session. Status is not
// persisted between requests, so the response is always idle.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	state := session.State{}
	if sid, ok := s.sessionID(r); ok {
		if store, err := s.app.OpenSession(r.Context(), sid); err == nil {
			store.Reset()
			state = store.State()
		}
	}
	state.Status = session.Status{Phase: session.PhaseIdle}
	writeJSON(w, http.StatusOK, state)
}
