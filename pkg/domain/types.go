package domain

import "time"

type UserRole string

const (
	RoleDonor    UserRole = "donor"
	RoleHospital UserRole = "hospital"
	RoleAdmin    UserRole = "admin"
	RoleRBC      UserRole = "rbc"
	RoleMinistry UserRole = "ministry"
)

// ParseUserRole accepts one of the five platform roles.
func ParseUserRole(role string) (UserRole, bool) {
	switch r := UserRole(role); r {
	case RoleDonor, RoleHospital, RoleAdmin, RoleRBC, RoleMinistry:
		return r, true
	default:
		return "", false
	}
}

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// ParseAppointmentStatus validates a requested status transition target.
func ParseAppointmentStatus(status string) (AppointmentStatus, bool) {
	switch s := AppointmentStatus(status); s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return s, true
	default:
		return "", false
	}
}

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestRejected  RequestStatus = "rejected"
)

// User is the authenticated account. Donor and hospital fields are only
// populated for the matching role.
type User struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Role  UserRole `json:"role"`

	BloodGroup        string `json:"bloodGroup,omitempty"`
	District          string `json:"district,omitempty"`
	State             string `json:"state,omitempty"`
	Phone             string `json:"phone,omitempty"`
	LastDonationMonth int    `json:"lastDonationMonth,omitempty"`
	LastDonationYear  int    `json:"lastDonationYear,omitempty"`

	HospitalName   string `json:"hospitalName,omitempty"`
	HeadOfHospital string `json:"headOfHospital,omitempty"`
	Address        string `json:"address,omitempty"`
}

type Hospital struct {
	ID             string    `json:"id"`
	HospitalName   string    `json:"hospitalName"`
	HeadOfHospital string    `json:"headOfHospital"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	District       string    `json:"district,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

type Donor struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone,omitempty"`
	BloodGroup        string `json:"bloodGroup"`
	District          string `json:"district,omitempty"`
	State             string `json:"state,omitempty"`
	LastDonationMonth int    `json:"lastDonationMonth,omitempty"`
	LastDonationYear  int    `json:"lastDonationYear,omitempty"`
}

type InventoryRow struct {
	HospitalID     string `json:"hospital_id,omitempty"`
	BloodType      string `json:"blood_type"`
	UnitsAvailable int    `json:"units_available"`
	CriticalLevel  int    `json:"critical_level"`
}

type Appointment struct {
	ID           string            `json:"id"`
	DonorID      string            `json:"donor_id"`
	HospitalID   string            `json:"hospital_id"`
	DonorName    string            `json:"donor_name,omitempty"`
	HospitalName string            `json:"hospital_name,omitempty"`
	BloodType    string            `json:"blood_type,omitempty"`
	Date         string            `json:"date"`
	Time         string            `json:"time"`
	Status       AppointmentStatus `json:"status"`
	Notes        string            `json:"notes,omitempty"`
}

type Activity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Status      string    `json:"status,omitempty"`
	Actor       string    `json:"actor,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type BloodRequest struct {
	ID         string        `json:"id"`
	HospitalID string        `json:"hospital_id"`
	BloodType  string        `json:"blood_type"`
	Units      int           `json:"units"`
	Urgency    Urgency       `json:"urgency"`
	Status     RequestStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

type Donation struct {
	ID           string    `json:"id"`
	DonorID      string    `json:"donor_id"`
	HospitalID   string    `json:"hospital_id"`
	HospitalName string    `json:"hospital_name,omitempty"`
	BloodType    string    `json:"blood_type"`
	Units        int       `json:"units"`
	Status       string    `json:"status"`
	DonatedAt    time.Time `json:"donated_at"`
}

type HospitalStats struct {
	TotalUnits          int `json:"total_units"`
	CriticalTypes       int `json:"critical_types"`
	PendingRequests     int `json:"pending_requests"`
	UpcomingAppointment int `json:"upcoming_appointments"`
	DonationsThisMonth  int `json:"donations_this_month"`
}

type MonthlyReport struct {
	Month     int `json:"month"`
	Year      int `json:"year"`
	Donations int `json:"donations"`
	Requests  int `json:"requests"`
	Units     int `json:"units"`
}
