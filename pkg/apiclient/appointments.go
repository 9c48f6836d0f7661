package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"givelife/pkg/domain"
)

func (c *Client) HospitalAppointments(ctx context.Context, token, hospitalID string) ([]domain.Appointment, error) {
	var items []domain.Appointment
	if err := c.do(ctx, http.MethodGet, pathf("/api/appointments/hospital/%s", hospitalID), token, nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) DonorAppointments(ctx context.Context, token, donorID string) ([]domain.Appointment, error) {
	var items []domain.Appointment
	if err := c.do(ctx, http.MethodGet, pathf("/api/appointments/donor/%s", donorID), token, nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateAppointment(ctx context.Context, token string, appt NewAppointment) (domain.Appointment, error) {
	var created domain.Appointment
	if err := c.do(ctx, http.MethodPost, "/api/appointments", token, nil, appt, &created); err != nil {
		return domain.Appointment{}, err
	}
	return created, nil
}

// UpdateAppointmentStatus requests a transition; the server decides whether
// it is allowed and callers should re-fetch afterwards.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, token, appointmentID string, status domain.AppointmentStatus) (domain.Appointment, error) {
	payload := map[string]string{"status": string(status)}
	var updated domain.Appointment
	if err := c.do(ctx, http.MethodPatch, pathf("/api/appointments/%s/status", appointmentID), token, nil, payload, &updated); err != nil {
		return domain.Appointment{}, err
	}
	return updated, nil
}

// AvailableSlots returns the HH:MM slots a hospital offers on date.
func (c *Client) AvailableSlots(ctx context.Context, token, hospitalID, date string) ([]string, error) {
	var slots []string
	query := url.Values{"date": {date}}
	if err := c.do(ctx, http.MethodGet, pathf("/api/appointments/hospital/%s/slots", hospitalID), token, query, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}
