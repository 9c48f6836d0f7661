package app

import (
	"context"
	"fmt"
	"slices"

	"givelife/pkg/apiclient"
	"givelife/pkg/domain"
)

// FreeSlots returns the offered slots on date that are still bookable.
func (a *App) FreeSlots(ctx context.Context, token, hospitalID, date string) ([]string, error) {
	if !domain.ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}
	offered, err := a.api.AvailableSlots(ctx, token, hospitalID, date)
	if err != nil {
		return nil, err
	}
	booked, err := a.api.HospitalAppointments(ctx, token, hospitalID)
	if err != nil {
		return nil, err
	}
	free := domain.FreeSlots(offered, booked, date, a.now())
	if free == nil {
		free = []string{}
	}
	return free, nil
}

// BookAppointment checks the slot is still free before creating the booking.
func (a *App) BookAppointment(ctx context.Context, token string, appt apiclient.NewAppointment) (domain.Appointment, error) {
	if err := appt.Validate(); err != nil {
		return domain.Appointment{}, err
	}
	free, err := a.FreeSlots(ctx, token, appt.HospitalID, appt.Date)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !slices.Contains(free, appt.Time) {
		return domain.Appointment{}, fmt.Errorf("%w: slot %s on %s is not available", domain.ErrValidation, appt.Time, appt.Date)
	}
	return a.api.CreateAppointment(ctx, token, appt)
}

func (a *App) UpdateAppointmentStatus(ctx context.Context, token, appointmentID, status string) (domain.Appointment, error) {
	st, ok := domain.ParseAppointmentStatus(status)
	if !ok {
		return domain.Appointment{}, fmt.Errorf("%w: unknown appointment status %q", domain.ErrValidation, status)
	}
	return a.api.UpdateAppointmentStatus(ctx, token, appointmentID, st)
}

func (a *App) CreateRequest(ctx context.Context, token string, req apiclient.NewBloodRequest) (domain.BloodRequest, error) {
	if err := req.Validate(); err != nil {
		return domain.BloodRequest{}, err
	}
	bt, _ := domain.ParseBloodType(req.BloodType)
	req.BloodType = string(bt)
	return a.api.CreateRequest(ctx, token, req)
}

func (a *App) CreateHospital(ctx context.Context, token string, reg domain.HospitalRegistration) (domain.Hospital, error) {
	if err := reg.Validate(); err != nil {
		return domain.Hospital{}, err
	}
	return a.api.CreateHospital(ctx, token, reg)
}

// HospitalStats bundles the dashboard counters with the monthly series for
// year.
type HospitalStats struct {
	Stats   domain.HospitalStats   `json:"stats"`
	Year    int                    `json:"year"`
	Monthly []domain.MonthlyReport `json:"monthly"`
}

func (a *App) HospitalStats(ctx context.Context, token, hospitalID string, year int) (HospitalStats, error) {
	if year <= 0 {
		year = a.now().Year()
	}
	stats, err := a.api.HospitalStats(ctx, token, hospitalID)
	if err != nil {
		return HospitalStats{}, err
	}
	monthly, err := a.api.MonthlyReports(ctx, token, hospitalID, year)
	if err != nil {
		return HospitalStats{}, err
	}
	if monthly == nil {
		monthly = []domain.MonthlyReport{}
	}
	return HospitalStats{Stats: stats, Year: year, Monthly: monthly}, nil
}
