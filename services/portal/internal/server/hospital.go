package server

import (
	"net/http"
	"strconv"

	"givelife/pkg/apiclient"
	"givelife/services/portal/internal/app"
)

func (s *Server) handleDonors(w http.ResponseWriter, r *http.Request, c caller) {
	var filter app.DonorFilter
	if raw := r.URL.Query().Get("eligible"); raw != "" {
		eligible, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "eligible must be true or false")
			return
		}
		filter.Eligible = &eligible
	}
	page, err := s.app.Donors(r.Context(), c.token, s.listRequest(r), filter)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleHospitalInventory(w http.ResponseWriter, r *http.Request, c caller) {
	inv, err := s.app.HospitalInventory(r.Context(), c.token, r.PathValue("id"))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleUpdateInventory(w http.ResponseWriter, r *http.Request, c caller) {
	var upd apiclient.InventoryUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	row, err := s.app.UpdateInventory(r.Context(), c.token, r.PathValue("id"), upd)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	s.audit(r, "portal.inventory.update", "success", "user_id", c.user.ID, "blood_type", row.BloodType)
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleHospitalAppointments(w http.ResponseWriter, r *http.Request, c caller) {
	page, err := s.app.HospitalAppointments(r.Context(), c.token, r.PathValue("id"), s.listRequest(r))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleHospitalActivity(w http.ResponseWriter, r *http.Request, c caller) {
	page, err := s.app.HospitalActivity(r.Context(), c.token, r.PathValue("id"), s.listRequest(r))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleHospitalRequests(w http.ResponseWriter, r *http.Request, c caller) {
	page, err := s.app.HospitalRequests(r.Context(), c.token, r.PathValue("id"), s.listRequest(r))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request, c caller) {
	var req apiclient.NewBloodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.HospitalID = r.PathValue("id")
	created, err := s.app.CreateRequest(r.Context(), c.token, req)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleHospitalStats(w http.ResponseWriter, r *http.Request, c caller) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "year must be a positive integer")
			return
		}
		year = n
	}
	stats, err := s.app.HospitalStats(r.Context(), c.token, r.PathValue("id"), year)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request, c caller) {
	slots, err := s.app.FreeSlots(r.Context(), c.token, r.PathValue("id"), r.URL.Query().Get("date"))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": r.URL.Query().Get("date"), "slots": slots})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleAppointmentStatus(w http.ResponseWriter, r *http.Request, c caller) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	appt, err := s.app.UpdateAppointmentStatus(r.Context(), c.token, r.PathValue("id"), req.Status)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	s.audit(r, "portal.appointment.status", "success", "user_id", c.user.ID, "appointment_id", appt.ID, "status", appt.Status)
	writeJSON(w, http.StatusOK, appt)
}

// handleBookAppointment books for the signed-in donor; any donor id in the
// body is ignored.
func (s *Server) handleBookAppointment(w http.ResponseWriter, r *http.Request, c caller) {
	var req apiclient.NewAppointment
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.DonorID = c.user.ID
	appt, err := s.app.BookAppointment(r.Context(), c.token, req)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func (s *Server) handleDonorAppointments(w http.ResponseWriter, r *http.Request, c caller) {
	page, err := s.app.DonorAppointments(r.Context(), c.token, r.PathValue("id"), s.listRequest(r))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleDonorDonations(w http.ResponseWriter, r *http.Request, c caller) {
	page, err := s.app.DonorDonations(r.Context(), c.token, r.PathValue("id"), s.listRequest(r))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
