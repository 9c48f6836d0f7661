package apiclient

import (
	"fmt"
	"strings"

	"givelife/pkg/domain"
)

// InventoryUpdate sets the units on hand for one blood type.
type InventoryUpdate struct {
	BloodType      string `json:"blood_type"`
	UnitsAvailable int    `json:"units_available"`
	CriticalLevel  *int   `json:"critical_level,omitempty"`
}

func (u InventoryUpdate) Validate() error {
	if _, ok := domain.ParseBloodType(u.BloodType); !ok {
		return fmt.Errorf("%w: unknown blood type %q", domain.ErrValidation, u.BloodType)
	}
	if u.UnitsAvailable < 0 {
		return fmt.Errorf("%w: units must not be negative", domain.ErrValidation)
	}
	if u.CriticalLevel != nil && *u.CriticalLevel < 0 {
		return fmt.Errorf("%w: critical level must not be negative", domain.ErrValidation)
	}
	return nil
}

// NewAppointment books a donation slot.
type NewAppointment struct {
	DonorID    string `json:"donor_id"`
	HospitalID string `json:"hospital_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Notes      string `json:"notes,omitempty"`
}

func (a NewAppointment) Validate() error {
	if strings.TrimSpace(a.DonorID) == "" || strings.TrimSpace(a.HospitalID) == "" {
		return fmt.Errorf("%w: donor and hospital are required", domain.ErrValidation)
	}
	if !domain.ValidDate(a.Date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}
	if strings.TrimSpace(a.Time) == "" {
		return fmt.Errorf("%w: time is required", domain.ErrValidation)
	}
	return nil
}

// NewBloodRequest asks the blood service for units.
type NewBloodRequest struct {
	HospitalID string         `json:"hospital_id"`
	BloodType  string         `json:"blood_type"`
	Units      int            `json:"units"`
	Urgency    domain.Urgency `json:"urgency"`
	Reason     string         `json:"reason,omitempty"`
}

func (r NewBloodRequest) Validate() error {
	if _, ok := domain.ParseBloodType(r.BloodType); !ok {
		return fmt.Errorf("%w: unknown blood type %q", domain.ErrValidation, r.BloodType)
	}
	if r.Units <= 0 {
		return fmt.Errorf("%w: units must be positive", domain.ErrValidation)
	}
	switch r.Urgency {
	case domain.UrgencyLow, domain.UrgencyMedium, domain.UrgencyHigh, domain.UrgencyCritical:
	default:
		return fmt.Errorf("%w: unknown urgency %q", domain.ErrValidation, r.Urgency)
	}
	return nil
}
