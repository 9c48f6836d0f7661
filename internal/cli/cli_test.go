package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"givelife/pkg/domain"
	"givelife/pkg/session"
)

var cliNow = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func reply(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 400 {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": data})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": data})
}

type fakeAPI struct {
	calls atomic.Int32
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	users := map[string]domain.User{
		"admin@givelife.rw": {ID: "a1", Email: "admin@givelife.rw", Role: domain.RoleAdmin, Name: "Admin"},
		"chuk@givelife.rw":  {ID: "h1", Email: "chuk@givelife.rw", Role: domain.RoleHospital, HospitalName: "CHUK"},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		user, ok := users[creds.Email]
		if !ok || creds.Password != "secret1" {
			reply(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		reply(w, http.StatusOK, map[string]any{"token": "tok-" + user.ID, "user": user})
	})
	mux.HandleFunc("GET /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		for _, u := range users {
			if r.Header.Get("Authorization") == "Bearer tok-"+u.ID {
				reply(w, http.StatusOK, map[string]any{"user": u})
				return
			}
		}
		reply(w, http.StatusUnauthorized, "Token expired")
	})
	mux.HandleFunc("GET /api/admin/hospitals", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, []domain.Hospital{
			{ID: "h1", HospitalName: "CHUK"},
			{ID: "h2", HospitalName: "King Faisal"},
			{ID: "h3", HospitalName: "Butare"},
		})
	})
	mux.HandleFunc("GET /api/inventory/hospital/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "h1":
			reply(w, http.StatusOK, []domain.InventoryRow{
				{BloodType: "A+", UnitsAvailable: 10, CriticalLevel: 5},
				{BloodType: "O-", UnitsAvailable: 5, CriticalLevel: 8},
			})
		case "h2":
			reply(w, http.StatusOK, []domain.InventoryRow{{BloodType: "A+", UnitsAvailable: 3, CriticalLevel: 5}})
		default:
			reply(w, http.StatusInternalServerError, "database unavailable")
		}
	})
	mux.HandleFunc("GET /api/donors", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, []domain.Donor{
			{ID: "d1", Name: "Aline", BloodGroup: "O-", LastDonationMonth: 4, LastDonationYear: 2026},
			{ID: "d2", Name: "Bosco", BloodGroup: "O-", LastDonationMonth: 1, LastDonationYear: 2026},
			{ID: "d3", Name: "Claire", BloodGroup: "A+"},
		})
	})
	mux.HandleFunc("GET /api/analytics/hospital/{id}/activity", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, []domain.Activity{
			{ID: "x1", Type: "donation", Description: "Aline donated O-"},
			{ID: "x2", Type: "request", Description: "Requested 4 units A+"},
		})
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type cliHarness struct {
	api         *fakeAPI
	url         string
	sessionFile string
}

func newCLI(t *testing.T) *cliHarness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	api := &fakeAPI{}
	srv := api.server(t)
	return &cliHarness{api: api, url: srv.URL, sessionFile: filepath.Join(t.TempDir(), "session.json")}
}

func (h *cliHarness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"-api", h.url, "-session", h.sessionFile}, args...)
	err := run(context.Background(), full, Streams{In: strings.NewReader(stdin), Out: &out, Err: &errOut}, func() time.Time { return cliNow })
	return out.String(), err
}

func (h *cliHarness) login(t *testing.T, email string) {
	t.Helper()
	if _, err := h.run(t, "secret1\n", "login", "-email", email); err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
}

func TestLoginStoresSessionForLaterCommands(t *testing.T) {
	h := newCLI(t)
	out, err := h.run(t, "secret1\n", "login", "-email", "chuk@givelife.rw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Login successful: signed in as CHUK (hospital)") {
		t.Fatalf("unexpected login output %q", out)
	}
	if _, err := os.Stat(h.sessionFile); err != nil {
		t.Fatalf("expected session file: %v", err)
	}

	out, err = h.run(t, "", "profile")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !regexp.MustCompile(`Hospital\s+CHUK`).MatchString(out) {
		t.Fatalf("expected hospital name in profile, got %q", out)
	}
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	h := newCLI(t)
	_, err := h.run(t, "", "login", "-email", "chuk@givelife.rw", "-password", "nope!!")
	if err == nil || err.Error() != "Invalid email or password" {
		t.Fatalf("expected upstream message, got %v", err)
	}
	if _, err := os.Stat(h.sessionFile); !os.IsNotExist(err) {
		t.Fatalf("expected no session file, got %v", err)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	h := newCLI(t)
	for _, cmd := range []string{"donors", "inventory", "appointments", "activity"} {
		if _, err := h.run(t, "", cmd); !errors.Is(err, session.ErrNotAuthenticated) {
			t.Fatalf("%s: expected ErrNotAuthenticated, got %v", cmd, err)
		}
	}
	if got := h.api.calls.Load(); got != 0 {
		t.Fatalf("expected no API calls, got %d", got)
	}
}

func TestInventorySummaryAcrossHospitals(t *testing.T) {
	h := newCLI(t)
	h.login(t, "admin@givelife.rw")

	out, err := h.run(t, "", "inventory")
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	for _, want := range []string{`A\+\s+13\n`, `O-\s+5\n`, `AB-\s+0\n`, `Total\s+18\n`, `hospitals included: 2 of 3`, `Butare: database unavailable`} {
		if !regexp.MustCompile(want).MatchString(out) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	out, err = h.run(t, "", "inventory", "-hospital", "h2,h2")
	if err != nil {
		t.Fatalf("inventory -hospital: %v", err)
	}
	if !strings.Contains(out, "hospitals included: 1 of 1") {
		t.Fatalf("expected duplicate ids collapsed:\n%s", out)
	}
}

func TestInventoryForHospitalShowsLowStock(t *testing.T) {
	h := newCLI(t)
	h.login(t, "chuk@givelife.rw")
	out, err := h.run(t, "", "inventory")
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if !regexp.MustCompile(`O-\s+5\s+8\s+LOW`).MatchString(out) {
		t.Fatalf("expected O- flagged low:\n%s", out)
	}
	if regexp.MustCompile(`A\+\s+10\s+5\s+LOW`).MatchString(out) {
		t.Fatalf("A+ should not be low:\n%s", out)
	}
}

func TestInventoryExportWritesWorkbook(t *testing.T) {
	h := newCLI(t)
	h.login(t, "admin@givelife.rw")
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	out, err := h.run(t, "", "inventory", "-export", path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "(2 of 3 hospitals)") {
		t.Fatalf("unexpected export output %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("expected xlsx zip container")
	}
}

func TestDonorsFilters(t *testing.T) {
	h := newCLI(t)
	h.login(t, "chuk@givelife.rw")

	out, err := h.run(t, "", "donors", "-category", "o-", "-eligible", "true")
	if err != nil {
		t.Fatalf("donors: %v", err)
	}
	if !strings.Contains(out, "Bosco") || strings.Contains(out, "Aline") || strings.Contains(out, "Claire") {
		t.Fatalf("expected only Bosco:\n%s", out)
	}
	if !strings.Contains(out, "page 1 of 1 (1 donors)") {
		t.Fatalf("unexpected footer:\n%s", out)
	}

	out, err = h.run(t, "", "donors", "-category", "O-")
	if err != nil {
		t.Fatalf("donors: %v", err)
	}
	if !strings.Contains(out, "from 2026-07-01") {
		t.Fatalf("expected next eligible date for Aline:\n%s", out)
	}

	if _, err := h.run(t, "", "donors", "-eligible", "maybe"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestActivityForHospital(t *testing.T) {
	h := newCLI(t)
	h.login(t, "chuk@givelife.rw")
	out, err := h.run(t, "", "activity", "-category", "request")
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if !strings.Contains(out, "Requested 4 units A+") || strings.Contains(out, "Aline donated") {
		t.Fatalf("unexpected activity:\n%s", out)
	}
}

func TestRegisterValidatesLocally(t *testing.T) {
	h := newCLI(t)
	_, err := h.run(t, "", "register", "donor", "-name", "Eric", "-email", "not-an-email", "-password", "secret1", "-blood-group", "B+")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := h.run(t, "", "register", "superuser"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected unknown role error, got %v", err)
	}
	if got := h.api.calls.Load(); got != 0 {
		t.Fatalf("expected no API calls, got %d", got)
	}
}

func TestLogoutRemovesSession(t *testing.T) {
	h := newCLI(t)
	h.login(t, "admin@givelife.rw")
	out, err := h.run(t, "", "logout")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if strings.TrimSpace(out) != "Logged out" {
		t.Fatalf("unexpected logout output %q", out)
	}
	if _, err := os.Stat(h.sessionFile); !os.IsNotExist(err) {
		t.Fatalf("expected session file removed, got %v", err)
	}
}

func TestUsageErrors(t *testing.T) {
	h := newCLI(t)
	if _, err := h.run(t, ""); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error without command, got %v", err)
	}
	if _, err := h.run(t, "", "transfuse"); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error for unknown command, got %v", err)
	}
	if _, err := h.run(t, "", "donors", "-bogus"); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error for unknown flag, got %v", err)
	}
}
