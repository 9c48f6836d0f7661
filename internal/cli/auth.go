package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"givelife/pkg/domain"
)

func runLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("login", e)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (read from stdin when empty)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *password == "" {
		line, err := readLine(e)
		if err != nil {
			return err
		}
		*password = line
	}
	if err := e.store.Login(ctx, domain.Credentials{Email: *email, Password: *password}); err != nil {
		return err
	}
	st := e.store.State()
	fmt.Fprintf(e.out, "%s: signed in as %s (%s)\n", st.Status.Message, displayName(*st.User), st.User.Role)
	return nil
}

type registerFlags struct {
	name, email, password, phone         string
	bloodGroup, district, state, address string
	hospitalName, head                   string
	lastMonth, lastYear                  int
}

func runRegister(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(e.out, "usage: givelife register <donor|hospital|admin|rbc|ministry> [flags]")
		return ErrUsage
	}
	role, ok := domain.ParseUserRole(args[0])
	if !ok {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, args[0])
	}

	var f registerFlags
	fs := newFlagSet("register "+string(role), e)
	fs.StringVar(&f.email, "email", "", "account email")
	fs.StringVar(&f.password, "password", "", "account password (read from stdin when empty)")
	fs.StringVar(&f.phone, "phone", "", "phone number")
	switch role {
	case domain.RoleHospital:
		fs.StringVar(&f.hospitalName, "hospital-name", "", "hospital name")
		fs.StringVar(&f.head, "head", "", "head of hospital")
		fs.StringVar(&f.address, "address", "", "street address")
		fs.StringVar(&f.district, "district", "", "district")
	case domain.RoleDonor:
		fs.StringVar(&f.name, "name", "", "full name")
		fs.StringVar(&f.bloodGroup, "blood-group", "", "blood group, e.g. O+")
		fs.StringVar(&f.district, "district", "", "district")
		fs.StringVar(&f.state, "state", "", "state or province")
		fs.IntVar(&f.lastMonth, "last-month", 0, "month of last donation (1-12)")
		fs.IntVar(&f.lastYear, "last-year", 0, "year of last donation")
	default:
		fs.StringVar(&f.name, "name", "", "full name")
	}
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}
	if f.password == "" {
		line, err := readLine(e)
		if err != nil {
			return err
		}
		f.password = line
	}

	var payload any
	switch role {
	case domain.RoleDonor:
		payload = domain.DonorRegistration{
			Name:              f.name,
			Email:             f.email,
			Password:          f.password,
			Phone:             f.phone,
			BloodGroup:        f.bloodGroup,
			District:          f.district,
			State:             f.state,
			LastDonationMonth: f.lastMonth,
			LastDonationYear:  f.lastYear,
		}
	case domain.RoleHospital:
		payload = domain.HospitalRegistration{
			HospitalName:   f.hospitalName,
			HeadOfHospital: f.head,
			Email:          f.email,
			Password:       f.password,
			Phone:          f.phone,
			Address:        f.address,
			District:       f.district,
		}
	default:
		payload = domain.StaffRegistration{Name: f.name, Email: f.email, Password: f.password, Phone: f.phone}
	}
	if err := e.store.Register(ctx, role, payload); err != nil {
		return err
	}
	st := e.store.State()
	if st.Authenticated {
		fmt.Fprintf(e.out, "%s: signed in as %s (%s)\n", st.Status.Message, displayName(*st.User), st.User.Role)
		return nil
	}
	fmt.Fprintln(e.out, st.Status.Message)
	return nil
}

func runProfile(ctx context.Context, e *env, args []string) error {
	var upd domain.ProfileUpdate
	fs := newFlagSet("profile", e)
	fs.StringVar(&upd.Name, "name", "", "new name")
	fs.StringVar(&upd.Phone, "phone", "", "new phone number")
	fs.StringVar(&upd.District, "district", "", "new district")
	fs.StringVar(&upd.State, "state", "", "new state or province")
	fs.StringVar(&upd.Address, "address", "", "new address (hospitals)")
	fs.StringVar(&upd.HeadOfHospital, "head", "", "new head of hospital (hospitals)")
	fs.IntVar(&upd.LastDonationMonth, "last-month", 0, "month of last donation (donors)")
	fs.IntVar(&upd.LastDonationYear, "last-year", 0, "year of last donation (donors)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var err error
	if fs.NFlag() > 0 {
		err = e.store.UpdateProfile(ctx, upd)
	} else {
		err = e.store.GetProfile(ctx)
	}
	if err != nil {
		return err
	}
	st := e.store.State()
	if st.User == nil {
		return errors.New("profile: no user returned")
	}
	if fs.NFlag() > 0 {
		fmt.Fprintln(e.out, st.Status.Message)
	}
	printUser(e.out, *st.User, e.now())
	return nil
}

func runLogout(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("logout", e)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := e.store.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.out, e.store.State().Status.Message)
	return nil
}

func readLine(e *env) (string, error) {
	sc := bufio.NewScanner(e.in)
	if sc.Scan() {
		return strings.TrimRight(sc.Text(), "\r"), nil
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return "", nil
}

func displayName(u domain.User) string {
	switch {
	case u.HospitalName != "":
		return u.HospitalName
	case u.Name != "":
		return u.Name
	default:
		return u.Email
	}
}
