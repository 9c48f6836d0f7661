package server

import (
	"fmt"
	"net/http"

	"givelife/internal/report"
	"givelife/pkg/domain"
	"givelife/pkg/inventory"
	"givelife/pkg/listing"
)

func (s *Server) listRequest(r *http.Request) listing.Request {
	return listing.ParseRequest(r.URL.Query(), s.app.DefaultPageSize())
}

func (s *Server) handleAdminHospitals(w http.ResponseWriter, r *http.Request, c caller) {
	page, err := s.app.Hospitals(r.Context(), c.token, s.listRequest(r))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateHospital(w http.ResponseWriter, r *http.Request, c caller) {
	var reg domain.HospitalRegistration
	if err := decodeJSON(r, &reg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	hospital, err := s.app.CreateHospital(r.Context(), c.token, reg)
	if err != nil {
		s.audit(r, "portal.admin.hospital.create", "fail", "user_id", c.user.ID, "reason", err.Error())
		writeAPIError(w, r, err)
		return
	}
	s.audit(r, "portal.admin.hospital.create", "success", "user_id", c.user.ID, "hospital_id", hospital.ID)
	writeJSON(w, http.StatusCreated, hospital)
}

type inventorySummaryResponse struct {
	inventory.Summary
	Names    map[string]string `json:"names,omitempty"`
	Complete bool              `json:"complete"`
}

func (s *Server) handleInventorySummary(w http.ResponseWriter, r *http.Request, c caller) {
	ids := r.URL.Query()["hospital"]
	summary, names, err := s.app.InventorySummary(r.Context(), c.token, ids)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inventorySummaryResponse{
		Summary:  summary,
		Names:    names,
		Complete: summary.Complete(),
	})
}

func (s *Server) handleInventoryExport(w http.ResponseWriter, r *http.Request, c caller) {
	data, err := s.app.ExportInventory(r.Context(), c.token)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	s.audit(r, "portal.admin.inventory.export", "success", "user_id", c.user.ID, "bytes", len(data))
	filename := fmt.Sprintf("givelife-inventory-%s.xlsx", s.now().Format("20060102"))
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleAdminActivity(w http.ResponseWriter, r *http.Request, c caller) {
	page, err := s.app.AdminActivity(r.Context(), c.token, s.listRequest(r))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
