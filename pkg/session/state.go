package session

import "givelife/pkg/domain"

// Phase is the lifecycle stage of the most recent operation.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// Op names the operation a Status belongs to.
type Op string

const (
	OpNone             Op = ""
	OpLogin            Op = "login"
	OpRegisterDonor    Op = "register_donor"
	OpRegisterHospital Op = "register_hospital"
	OpRegisterAdmin    Op = "register_admin"
	OpRegisterRBC      Op = "register_rbc"
	OpRegisterMinistry Op = "register_ministry"
	OpGetProfile       Op = "get_profile"
	OpUpdateProfile    Op = "update_profile"
	OpLogout           Op = "logout"
)

// Status is the outcome of the latest operation. Message carries the success
// text or the rejection reason depending on Phase.
type Status struct {
	Phase   Phase  `json:"phase"`
	Op      Op     `json:"op,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s Status) IsLoading() bool { return s.Phase == PhasePending }
func (s Status) IsSuccess() bool { return s.Phase == PhaseSucceeded }
func (s Status) IsError() bool   { return s.Phase == PhaseFailed }

// State is a read-only view of the session. Authenticated is true exactly
// when User is non-nil.
type State struct {
	User          *domain.User `json:"user"`
	Authenticated bool         `json:"isAuthenticated"`
	Status        Status       `json:"status"`
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

const (
	msgLoginOK      = "Login successful"
	msgRegisterOK   = "Registration successful! Please login."
	msgStaffOK      = "Registration successful"
	msgProfileSaved = "Profile updated successfully"
	msgLoggedOut    = "Logged out"
)

var registerOps = map[domain.UserRole]Op{
	domain.RoleDonor:    OpRegisterDonor,
	domain.RoleHospital: OpRegisterHospital,
	domain.RoleAdmin:    OpRegisterAdmin,
	domain.RoleRBC:      OpRegisterRBC,
	domain.RoleMinistry: OpRegisterMinistry,
}
