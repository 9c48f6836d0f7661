package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"givelife/pkg/domain"
)

// ErrNotAuthenticated is returned by operations that need a stored token.
var ErrNotAuthenticated = errors.New("not authenticated")

// Authenticator is the remote auth surface the store drives.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.User, string, error)
	RegisterDonor(ctx context.Context, reg domain.DonorRegistration) (domain.User, error)
	RegisterHospital(ctx context.Context, reg domain.HospitalRegistration) (domain.User, error)
	RegisterStaff(ctx context.Context, role domain.UserRole, reg domain.StaffRegistration) (domain.User, string, error)
	Profile(ctx context.Context, token string) (domain.User, error)
	UpdateProfile(ctx context.Context, token string, upd domain.ProfileUpdate) (domain.User, error)
}

// Config wires a Store.
type Config struct {
	Auth      Authenticator
	Persister Persister
	Logger    *slog.Logger
	// Now is used for token expiry checks at bootstrap.
	Now func() time.Time
}

// Store is the single authoritative auth record for one session. Remote
// calls run outside the lock; every settle replaces the whole state, so
// concurrent operations resolve as last-settled-wins.
type Store struct {
	auth    Authenticator
	persist Persister
	logger  *slog.Logger

	mu    sync.Mutex
	state State
	token string
}

// New builds a store and bootstraps it from the persister. A snapshot that
// cannot be read, or whose JWT has expired, is cleared and the store starts
// unauthenticated.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Auth == nil {
		return nil, errors.New("session: authenticator is required")
	}
	if cfg.Persister == nil {
		cfg.Persister = &MemoryPersister{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Store{
		auth:    cfg.Auth,
		persist: cfg.Persister,
		logger:  cfg.Logger,
		state:   State{Status: Status{Phase: PhaseIdle}},
	}

	snap, ok, err := s.persist.Load(ctx)
	switch {
	case err != nil:
		s.logger.Warn("discarding unreadable session", "err", err)
		s.clearPersisted(ctx)
	case !ok:
	case tokenExpired(snap.Token, cfg.Now()):
		s.logger.Info("discarding expired session", "user_id", snap.User.ID)
		s.clearPersisted(ctx)
	default:
		user := snap.User
		s.state.User = &user
		s.state.Authenticated = true
		s.token = snap.Token
	}
	return s, nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Token returns the bearer token of the authenticated user, or "".
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) Login(ctx context.Context, creds domain.Credentials) error {
	return s.run(ctx, OpLogin, func(ctx context.Context, _ string) (outcome, error) {
		if err := creds.Validate(); err != nil {
			return outcome{}, err
		}
		user, token, err := s.auth.Login(ctx, creds)
		if err != nil {
			return outcome{}, err
		}
		return signedIn(user, token, msgLoginOK), nil
	})
}

func (s *Store) RegisterDonor(ctx context.Context, reg domain.DonorRegistration) error {
	return s.run(ctx, OpRegisterDonor, func(ctx context.Context, _ string) (outcome, error) {
		if err := reg.Validate(); err != nil {
			return outcome{}, err
		}
		if _, err := s.auth.RegisterDonor(ctx, reg); err != nil {
			return outcome{}, err
		}
		return signedOut(msgRegisterOK), nil
	})
}

func (s *Store) RegisterHospital(ctx context.Context, reg domain.HospitalRegistration) error {
	return s.run(ctx, OpRegisterHospital, func(ctx context.Context, _ string) (outcome, error) {
		if err := reg.Validate(); err != nil {
			return outcome{}, err
		}
		if _, err := s.auth.RegisterHospital(ctx, reg); err != nil {
			return outcome{}, err
		}
		return signedOut(msgRegisterOK), nil
	})
}

func (s *Store) RegisterAdmin(ctx context.Context, reg domain.StaffRegistration) error {
	return s.registerStaff(ctx, domain.RoleAdmin, reg)
}

func (s *Store) RegisterRBC(ctx context.Context, reg domain.StaffRegistration) error {
	return s.registerStaff(ctx, domain.RoleRBC, reg)
}

func (s *Store) RegisterMinistry(ctx context.Context, reg domain.StaffRegistration) error {
	return s.registerStaff(ctx, domain.RoleMinistry, reg)
}

func (s *Store) registerStaff(ctx context.Context, role domain.UserRole, reg domain.StaffRegistration) error {
	return s.run(ctx, registerOps[role], func(ctx context.Context, _ string) (outcome, error) {
		if err := reg.Validate(); err != nil {
			return outcome{}, err
		}
		user, token, err := s.auth.RegisterStaff(ctx, role, reg)
		if err != nil {
			return outcome{}, err
		}
		return signedIn(user, token, msgStaffOK), nil
	})
}

// GetProfile refreshes the user record with the stored token.
func (s *Store) GetProfile(ctx context.Context) error {
	return s.run(ctx, OpGetProfile, func(ctx context.Context, token string) (outcome, error) {
		if token == "" {
			return outcome{}, ErrNotAuthenticated
		}
		user, err := s.auth.Profile(ctx, token)
		if err != nil {
			return outcome{}, err
		}
		return signedIn(user, token, ""), nil
	})
}

func (s *Store) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) error {
	return s.run(ctx, OpUpdateProfile, func(ctx context.Context, token string) (outcome, error) {
		if token == "" {
			return outcome{}, ErrNotAuthenticated
		}
		if err := upd.Validate(); err != nil {
			return outcome{}, err
		}
		user, err := s.auth.UpdateProfile(ctx, token, upd)
		if err != nil {
			return outcome{}, err
		}
		return signedIn(user, token, msgProfileSaved), nil
	})
}

// Logout forgets the user locally; there is no remote call.
func (s *Store) Logout(ctx context.Context) error {
	return s.run(ctx, OpLogout, func(context.Context, string) (outcome, error) {
		return signedOut(msgLoggedOut), nil
	})
}

// Register dispatches a registration by role. The payload must match the
// role: DonorRegistration for donors, HospitalRegistration for hospitals
// and StaffRegistration for the rest.
func (s *Store) Register(ctx context.Context, role domain.UserRole, payload any) error {
	switch reg := payload.(type) {
	case domain.DonorRegistration:
		if role == domain.RoleDonor {
			return s.RegisterDonor(ctx, reg)
		}
	case domain.HospitalRegistration:
		if role == domain.RoleHospital {
			return s.RegisterHospital(ctx, reg)
		}
	case domain.StaffRegistration:
		switch role {
		case domain.RoleAdmin:
			return s.RegisterAdmin(ctx, reg)
		case domain.RoleRBC:
			return s.RegisterRBC(ctx, reg)
		case domain.RoleMinistry:
			return s.RegisterMinistry(ctx, reg)
		}
	}
	return fmt.Errorf("%w: unsupported registration for role %q", domain.ErrValidation, role)
}

// Reset returns the status to idle. The user is kept.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Status = Status{Phase: PhaseIdle}
}

// outcome is the fulfilled result of one operation. A nil user signs the
// session out.
type outcome struct {
	user    *domain.User
	token   string
	message string
}

func signedIn(user domain.User, token, message string) outcome {
	return outcome{user: &user, token: token, message: message}
}

func signedOut(message string) outcome {
	return outcome{message: message}
}

func (s *Store) run(ctx context.Context, op Op, call func(ctx context.Context, token string) (outcome, error)) error {
	s.mu.Lock()
	s.state.Status = Status{Phase: PhasePending, Op: op}
	token := s.token
	s.mu.Unlock()

	out, err := call(ctx, token)
	if err == nil {
		err = s.fulfil(ctx, op, out)
	}
	if err != nil {
		s.reject(ctx, op, err)
	}
	return err
}

func (s *Store) fulfil(ctx context.Context, op Op, out outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if out.user != nil {
		if err := s.persist.Save(ctx, Snapshot{Token: out.token, User: *out.user}); err != nil {
			return err
		}
	} else if err := s.persist.Clear(ctx); err != nil {
		s.logger.Warn("clear persisted session failed", "op", op, "err", err)
	}
	s.state = State{
		User:          out.user,
		Authenticated: out.user != nil,
		Status:        Status{Phase: PhaseSucceeded, Op: op, Message: out.message},
	}
	s.token = out.token
	return nil
}

func (s *Store) reject(ctx context.Context, op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearPersisted(ctx)
	s.state = State{Status: Status{Phase: PhaseFailed, Op: op, Message: err.Error()}}
	s.token = ""
	s.logger.Debug("session operation rejected", "op", op, "err", err)
}

func (s *Store) clearPersisted(ctx context.Context) {
	if err := s.persist.Clear(ctx); err != nil {
		s.logger.Warn("clear persisted session failed", "err", err)
	}
}
