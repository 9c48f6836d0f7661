package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"givelife/pkg/domain"
)

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Config{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestLoginUnwrapsEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if creds.Email != "donor@example.com" {
			t.Errorf("unexpected email %q", creds.Email)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"status": "success",
			"data": map[string]any{
				"token": "jwt-token",
				"user":  map[string]any{"id": "d1", "email": "donor@example.com", "role": "donor", "bloodGroup": "O-"},
			},
		})
	})
	client := newTestClient(t, mux)

	user, token, err := client.Login(context.Background(), domain.Credentials{Email: "donor@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "jwt-token" || user.ID != "d1" || user.BloodGroup != "O-" {
		t.Fatalf("unexpected login result %+v %q", user, token)
	}
}

func TestProfileUnwrapsUserEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-h1" {
			t.Errorf("unexpected authorization %q", r.Header.Get("Authorization"))
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"status": "success",
			"data": map[string]any{
				"user": map[string]any{"id": "h1", "email": "h@chuk.rw", "role": "hospital", "hospitalName": "CHUK"},
			},
		})
	})
	mux.HandleFunc("PUT /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		var upd domain.ProfileUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"status": "success",
			"data": map[string]any{
				"token": "tok-h1-renewed",
				"user":  map[string]any{"id": "h1", "email": "h@chuk.rw", "role": "hospital", "hospitalName": "CHUK"},
			},
		})
	})
	client := newTestClient(t, mux)

	user, err := client.Profile(context.Background(), "tok-h1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if user.ID != "h1" || user.Email != "h@chuk.rw" || user.HospitalName != "CHUK" {
		t.Fatalf("unexpected profile %+v", user)
	}
	user, err = client.UpdateProfile(context.Background(), "tok-h1", domain.ProfileUpdate{})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if user.ID != "h1" || user.Role != domain.RoleHospital {
		t.Fatalf("unexpected updated profile %+v", user)
	}
}

func TestResponseWithoutUserIsRejected(t *testing.T) {
	bare := func(w http.ResponseWriter, r *http.Request) {
		// A bare user object instead of {user: ...} decodes to an empty user.
		writeEnvelope(w, http.StatusOK, map[string]any{
			"status": "success",
			"data":   map[string]any{"id": "h1", "email": "h@chuk.rw", "role": "hospital"},
		})
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/profile", bare)
	mux.HandleFunc("PUT /auth/profile", bare)
	mux.HandleFunc("POST /auth/login", bare)
	client := newTestClient(t, mux)
	ctx := context.Background()

	_, err := client.Profile(ctx, "tok-h1")
	if !IsStatus(err, http.StatusBadGateway) {
		t.Fatalf("expected 502 for profile without user, got %v", err)
	}
	_, err = client.UpdateProfile(ctx, "tok-h1", domain.ProfileUpdate{})
	if !IsStatus(err, http.StatusBadGateway) {
		t.Fatalf("expected 502 for update without user, got %v", err)
	}
	_, _, err = client.Login(ctx, domain.Credentials{Email: "h@chuk.rw", Password: "secret1"})
	if !IsStatus(err, http.StatusBadGateway) {
		t.Fatalf("expected 502 for login without user, got %v", err)
	}
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{"status": "error", "message": "Invalid email or password"})
	})
	mux.HandleFunc("GET /api/donors", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"status": "error", "message": "Access denied"})
	})
	client := newTestClient(t, mux)

	_, _, err := client.Login(context.Background(), domain.Credentials{Email: "a@b.rw", Password: "nope12"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Invalid email or password" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected IsStatus to match 401")
	}

	_, err = client.Donors(context.Background(), "tok")
	if !errors.As(err, &apiErr) || apiErr.Message != "Access denied" {
		t.Fatalf("expected in-band error envelope to surface, got %v", err)
	}
}

func TestNonJSONErrorUsesStatusText(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/hospitals", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})
	client := newTestClient(t, mux)
	_, err := client.Hospitals(context.Background(), "tok")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError || apiErr.Message == "" {
		t.Fatalf("expected 500 APIError with message, got %v", err)
	}
}

func TestBearerTokenAndPathEscaping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/inventory/hospital/{id}", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if id := r.PathValue("id"); id != "h 1" {
			t.Errorf("unexpected id %q", id)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"status": "success",
			"data": []map[string]any{
				{"hospital_id": "h 1", "blood_type": "A+", "units_available": 4, "critical_level": 5},
			},
		})
	})
	client := newTestClient(t, mux)
	rows, err := client.HospitalInventory(context.Background(), "tok", "h 1")
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if len(rows) != 1 || rows[0].UnitsAvailable != 4 || rows[0].CriticalLevel != 5 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestInventorySourceCarriesToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/hospitals", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-a1" {
			t.Errorf("unexpected authorization header %q", got)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"status": "success",
			"data":   []map[string]any{{"id": "h1", "hospitalName": "CHUK"}},
		})
	})
	mux.HandleFunc("GET /api/inventory/hospital/{id}", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-a1" {
			t.Errorf("unexpected authorization header %q", got)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"status": "success",
			"data":   []map[string]any{{"blood_type": "O-", "units_available": 2, "critical_level": 3}},
		})
	})
	src := newTestClient(t, mux).InventorySource("tok-a1")
	ctx := context.Background()

	hospitals, err := src.Hospitals(ctx)
	if err != nil {
		t.Fatalf("hospitals: %v", err)
	}
	if len(hospitals) != 1 || hospitals[0].HospitalName != "CHUK" {
		t.Fatalf("unexpected hospitals %+v", hospitals)
	}
	rows, err := src.HospitalInventory(ctx, "h1")
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if len(rows) != 1 || rows[0].BloodType != "O-" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestQueryParameters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/appointments/hospital/{id}/slots", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("date"); got != "2026-05-04" {
			t.Errorf("unexpected date %q", got)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"status": "success", "data": []string{"09:00", "10:00"}})
	})
	mux.HandleFunc("GET /api/analytics/hospital/{id}/monthly", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("year"); got != "2026" {
			t.Errorf("unexpected year %q", got)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"status": "success", "data": []map[string]any{{"month": 1, "year": 2026, "donations": 3}}})
	})
	client := newTestClient(t, mux)

	slots, err := client.AvailableSlots(context.Background(), "tok", "h1", "2026-05-04")
	if err != nil || len(slots) != 2 {
		t.Fatalf("slots: %v %v", slots, err)
	}
	reports, err := client.MonthlyReports(context.Background(), "tok", "h1", 2026)
	if err != nil || len(reports) != 1 || reports[0].Donations != 3 {
		t.Fatalf("monthly: %v %v", reports, err)
	}
}

func TestUpdateAppointmentStatusSendsPatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/appointments/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeEnvelope(w, http.StatusOK, map[string]any{
			"status": "success",
			"data":   map[string]any{"id": r.PathValue("id"), "status": body["status"]},
		})
	})
	client := newTestClient(t, mux)
	appt, err := client.UpdateAppointmentStatus(context.Background(), "tok", "a1", domain.AppointmentConfirmed)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if appt.ID != "a1" || appt.Status != domain.AppointmentConfirmed {
		t.Fatalf("unexpected appointment %+v", appt)
	}
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/donors", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	client := newTestClient(t, mux)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Donors(ctx, "tok")
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport errors must not be APIErrors: %v", err)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestRequestValidation(t *testing.T) {
	if err := (NewBloodRequest{BloodType: "AB-", Units: 2, Urgency: domain.UrgencyHigh}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (NewBloodRequest{BloodType: "AB-", Units: 0, Urgency: domain.UrgencyHigh}).Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected zero units to fail, got %v", err)
	}
	if err := (NewAppointment{DonorID: "d", HospitalID: "h", Date: "04/05/2026", Time: "09:00"}).Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected bad date to fail, got %v", err)
	}
	if err := (InventoryUpdate{BloodType: "B+", UnitsAvailable: -1}).Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected negative units to fail, got %v", err)
	}
}
