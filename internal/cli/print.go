package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"givelife/pkg/domain"
	"givelife/pkg/inventory"
	"givelife/pkg/listing"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printUser(w io.Writer, u domain.User, now time.Time) {
	tw := newTable(w)
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", label, value)
		}
	}
	field("ID", u.ID)
	field("Role", string(u.Role))
	field("Email", u.Email)
	field("Name", u.Name)
	field("Hospital", u.HospitalName)
	field("Head", u.HeadOfHospital)
	field("Address", u.Address)
	field("Phone", u.Phone)
	field("Blood group", u.BloodGroup)
	field("District", u.District)
	field("State", u.State)
	if u.Role == domain.RoleDonor {
		st := domain.Eligibility(u.LastDonationMonth, u.LastDonationYear, now)
		field("Eligible", eligibilityText(st))
	}
	tw.Flush()
}

func printInventoryRows(w io.Writer, rows []domain.InventoryRow) {
	low := map[string]bool{}
	for _, r := range inventory.LowStock(rows) {
		low[r.BloodType] = true
	}
	totals, skipped := inventory.Sum(rows)
	tw := newTable(w)
	fmt.Fprintln(tw, "BLOOD TYPE\tUNITS\tCRITICAL\t")
	for _, r := range rows {
		mark := ""
		if low[r.BloodType] {
			mark = "LOW"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", r.BloodType, r.UnitsAvailable, r.CriticalLevel, mark)
	}
	fmt.Fprintf(tw, "Total\t%d\t\t\n", totals.Total())
	tw.Flush()
	if skipped > 0 {
		fmt.Fprintf(w, "%d rows with unknown blood types skipped\n", skipped)
	}
}

func printSummary(w io.Writer, s inventory.Summary, names map[string]string) {
	tw := newTable(w)
	fmt.Fprintln(tw, "BLOOD TYPE\tUNITS")
	for _, e := range s.Totals.Entries() {
		fmt.Fprintf(tw, "%s\t%d\n", e.BloodType, e.Units)
	}
	fmt.Fprintf(tw, "Total\t%d\n", s.Totals.Total())
	tw.Flush()

	fmt.Fprintf(w, "\nhospitals included: %d of %d\n", s.Included, s.Requested)
	for _, h := range s.Failed() {
		name := names[h.HospitalID]
		if name == "" {
			name = h.HospitalID
		}
		fmt.Fprintf(w, "  %s: %s\n", name, h.Error)
	}
}

func printDonors(w io.Writer, p listing.Page[donorRow]) {
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tBLOOD\tDISTRICT\tPHONE\tELIGIBLE")
	for _, d := range p.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Name, d.BloodGroup, d.District, d.Phone, eligibilityText(d.eligibility))
	}
	tw.Flush()
	printFooter(w, p.Page, p.TotalPages, p.Total, "donors")
}

func printAppointments(w io.Writer, p listing.Page[domain.Appointment], counterpart func(domain.Appointment) string) {
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tTIME\tWITH\tBLOOD\tSTATUS")
	for _, ap := range p.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ap.Date, ap.Time, counterpart(ap), ap.BloodType, ap.Status)
	}
	tw.Flush()
	printFooter(w, p.Page, p.TotalPages, p.Total, "appointments")
}

func printActivity(w io.Writer, p listing.Page[domain.Activity]) {
	tw := newTable(w)
	fmt.Fprintln(tw, "WHEN\tTYPE\tDESCRIPTION\tSTATUS")
	for _, a := range p.Items {
		when := ""
		if !a.CreatedAt.IsZero() {
			when = a.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", when, a.Type, a.Description, a.Status)
	}
	tw.Flush()
	printFooter(w, p.Page, p.TotalPages, p.Total, "entries")
}

func printFooter(w io.Writer, page, pages, total int, noun string) {
	if total == 0 {
		fmt.Fprintf(w, "no %s\n", noun)
		return
	}
	fmt.Fprintf(w, "page %d of %d (%d %s)\n", page, pages, total, noun)
}

func eligibilityText(st domain.EligibilityStatus) string {
	switch {
	case st.Eligible:
		return "yes"
	case st.NextEligible.IsZero():
		return "no"
	default:
		return "from " + st.NextEligible.Format("2006-01-02")
	}
}
