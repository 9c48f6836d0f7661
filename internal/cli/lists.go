package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"givelife/internal/report"
	"givelife/pkg/domain"
	"givelife/pkg/inventory"
	"givelife/pkg/listing"
)

type listFlags struct {
	category string
	query    string
	page     int
	pageSize int
}

func (l *listFlags) register(e *env, fs *flag.FlagSet, categoryHelp string) {
	fs.StringVar(&l.category, "category", listing.CategoryAll, categoryHelp)
	fs.StringVar(&l.query, "q", "", "search text")
	fs.IntVar(&l.page, "page", 1, "page number")
	fs.IntVar(&l.pageSize, "page-size", e.cfg.PageSize, "rows per page")
}

func (l listFlags) request() listing.Request {
	return listing.Request{
		Category: l.category,
		Query:    l.query,
		Page:     l.page,
		PageSize: listing.NormalizePageSize(l.pageSize, listing.DefaultPageSize),
	}
}

func runInventory(ctx context.Context, e *env, args []string) error {
	var ids stringList
	fs := newFlagSet("inventory", e)
	fs.Var(&ids, "hospital", "hospital id to include (repeatable, comma separated)")
	export := fs.String("export", "", "write the summary as an xlsx workbook to this path")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	user, token, err := e.signedIn()
	if err != nil {
		return err
	}

	if user.Role == domain.RoleHospital && len(ids) == 0 && *export == "" {
		rows, err := e.api.HospitalInventory(ctx, token, user.ID)
		if err != nil {
			return err
		}
		printInventoryRows(e.out, rows)
		return nil
	}

	cfg := inventory.Config{Concurrency: e.cfg.AggregateConcurrency, Logger: e.logger}
	summary, names, err := inventory.Summarize(ctx, e.api.InventorySource(token), ids, cfg)
	if err != nil {
		return err
	}

	if *export != "" {
		data, err := report.InventoryWorkbook(summary, names, e.now())
		if err != nil {
			return fmt.Errorf("render inventory workbook: %w", err)
		}
		if err := os.WriteFile(*export, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", *export, err)
		}
		fmt.Fprintf(e.out, "wrote %s (%d of %d hospitals)\n", *export, summary.Included, summary.Requested)
		return nil
	}
	printSummary(e.out, summary, names)
	return nil
}

type donorRow struct {
	domain.Donor
	eligibility domain.EligibilityStatus
}

func runDonors(ctx context.Context, e *env, args []string) error {
	var lf listFlags
	fs := newFlagSet("donors", e)
	lf.register(e, fs, "blood group, or all")
	eligible := fs.String("eligible", "", "true or false to filter by donation eligibility")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	_, token, err := e.signedIn()
	if err != nil {
		return err
	}

	v := listing.NewView(lf.pageSize,
		func(d donorRow) string { return d.BloodGroup },
		func(d donorRow) string { return d.Name },
		func(d donorRow) string { return d.Email },
		func(d donorRow) string { return d.District },
		func(d donorRow) string { return d.Phone },
	)
	if *eligible != "" {
		want, err := strconv.ParseBool(*eligible)
		if err != nil {
			return fmt.Errorf("%w: -eligible must be true or false", domain.ErrValidation)
		}
		v.Where(func(d donorRow) bool { return d.eligibility.Eligible == want })
	}

	donors, err := e.api.Donors(ctx, token)
	if err != nil {
		return err
	}
	now := e.now()
	rows := make([]donorRow, len(donors))
	for i, d := range donors {
		rows[i] = donorRow{Donor: d, eligibility: domain.DonorEligibility(d, now)}
	}
	printDonors(e.out, listing.ApplyRequest(v, lf.request(), rows))
	return nil
}

func runAppointments(ctx context.Context, e *env, args []string) error {
	var lf listFlags
	fs := newFlagSet("appointments", e)
	lf.register(e, fs, "status (pending, confirmed, completed, cancelled), or all")
	hospital := fs.String("hospital", "", "hospital id (admins)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	user, token, err := e.signedIn()
	if err != nil {
		return err
	}

	var items []domain.Appointment
	counterpart := func(ap domain.Appointment) string { return ap.DonorName }
	switch {
	case user.Role == domain.RoleDonor:
		items, err = e.api.DonorAppointments(ctx, token, user.ID)
		counterpart = func(ap domain.Appointment) string { return ap.HospitalName }
	case user.Role == domain.RoleHospital:
		items, err = e.api.HospitalAppointments(ctx, token, user.ID)
	case *hospital != "":
		items, err = e.api.HospitalAppointments(ctx, token, *hospital)
	default:
		return errors.New("appointments: -hospital is required for this account")
	}
	if err != nil {
		return err
	}
	v := listing.NewView(lf.pageSize,
		func(ap domain.Appointment) string { return string(ap.Status) },
		counterpart,
		func(ap domain.Appointment) string { return ap.BloodType },
		func(ap domain.Appointment) string { return ap.Date },
	)
	printAppointments(e.out, listing.ApplyRequest(v, lf.request(), items), counterpart)
	return nil
}

func runActivity(ctx context.Context, e *env, args []string) error {
	var lf listFlags
	fs := newFlagSet("activity", e)
	lf.register(e, fs, "activity type, or all")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	user, token, err := e.signedIn()
	if err != nil {
		return err
	}

	var items []domain.Activity
	switch user.Role {
	case domain.RoleHospital:
		items, err = e.api.HospitalActivity(ctx, token, user.ID)
	case domain.RoleAdmin:
		items, err = e.api.AdminActivity(ctx, token)
	default:
		return fmt.Errorf("activity: not available for %s accounts", user.Role)
	}
	if err != nil {
		return err
	}
	v := listing.NewView(lf.pageSize,
		func(a domain.Activity) string { return a.Type },
		func(a domain.Activity) string { return a.Description },
		func(a domain.Activity) string { return a.Actor },
	)
	printActivity(e.out, listing.ApplyRequest(v, lf.request(), items))
	return nil
}
