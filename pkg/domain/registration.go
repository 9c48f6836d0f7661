package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// MinPasswordLength is enforced before any registration reaches the network.
const MinPasswordLength = 6

// ErrValidation marks input rejected locally, without a remote call.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Credentials are the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return invalid("email and password are required")
	}
	return validateEmail(c.Email)
}

// DonorRegistration is the donor sign-up form.
type DonorRegistration struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	Phone             string `json:"phone,omitempty"`
	BloodGroup        string `json:"bloodGroup"`
	District          string `json:"district,omitempty"`
	State             string `json:"state,omitempty"`
	LastDonationMonth int    `json:"lastDonationMonth,omitempty"`
	LastDonationYear  int    `json:"lastDonationYear,omitempty"`
}

func (r DonorRegistration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name is required")
	}
	if err := validateEmailPassword(r.Email, r.Password); err != nil {
		return err
	}
	if _, ok := ParseBloodType(r.BloodGroup); !ok {
		return invalid("unknown blood group %q", r.BloodGroup)
	}
	if r.LastDonationMonth < 0 || r.LastDonationMonth > 12 {
		return invalid("last donation month must be 1-12")
	}
	return nil
}

// HospitalRegistration is used both for hospital self sign-up and for admin
// hospital creation.
type HospitalRegistration struct {
	HospitalName   string `json:"hospitalName"`
	HeadOfHospital string `json:"headOfHospital"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	District       string `json:"district,omitempty"`
}

func (r HospitalRegistration) Validate() error {
	if strings.TrimSpace(r.HospitalName) == "" || strings.TrimSpace(r.HeadOfHospital) == "" {
		return invalid("hospital name and head of hospital are required")
	}
	return validateEmailPassword(r.Email, r.Password)
}

// StaffRegistration covers admin, rbc and ministry accounts.
type StaffRegistration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

func (r StaffRegistration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name is required")
	}
	return validateEmailPassword(r.Email, r.Password)
}

// ProfileUpdate carries the editable profile fields; empty fields are left
// unchanged by the remote API.
type ProfileUpdate struct {
	Name              string `json:"name,omitempty"`
	Phone             string `json:"phone,omitempty"`
	District          string `json:"district,omitempty"`
	State             string `json:"state,omitempty"`
	Address           string `json:"address,omitempty"`
	HeadOfHospital    string `json:"headOfHospital,omitempty"`
	LastDonationMonth int    `json:"lastDonationMonth,omitempty"`
	LastDonationYear  int    `json:"lastDonationYear,omitempty"`
}

func (u ProfileUpdate) Validate() error {
	if u.LastDonationMonth < 0 || u.LastDonationMonth > 12 {
		return invalid("last donation month must be 1-12")
	}
	return nil
}

func validateEmailPassword(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return invalid("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return invalid("invalid email address")
	}
	return nil
}
