package app

import (
	"context"

	"givelife/pkg/domain"
	"givelife/pkg/listing"
)

// DonorView is a donor row with its derived eligibility.
type DonorView struct {
	domain.Donor
	Eligibility domain.EligibilityStatus `json:"eligibility"`
}

// DonorFilter narrows the donor list beyond category and search.
type DonorFilter struct {
	// Eligible, when set, keeps only donors whose eligibility matches.
	Eligible *bool
}

// Donors lists donors. The category is the blood group; search covers name,
// email, district and phone.
func (a *App) Donors(ctx context.Context, token string, req listing.Request, filter DonorFilter) (listing.Page[DonorView], error) {
	donors, err := a.api.Donors(ctx, token)
	if err != nil {
		return listing.Page[DonorView]{}, err
	}
	now := a.now()
	views := make([]DonorView, len(donors))
	for i, d := range donors {
		views[i] = DonorView{Donor: d, Eligibility: domain.DonorEligibility(d, now)}
	}
	v := listing.NewView(a.pageSize,
		func(d DonorView) string { return d.BloodGroup },
		func(d DonorView) string { return d.Name },
		func(d DonorView) string { return d.Email },
		func(d DonorView) string { return d.District },
		func(d DonorView) string { return d.Phone },
	)
	if filter.Eligible != nil {
		want := *filter.Eligible
		v.Where(func(d DonorView) bool { return d.Eligibility.Eligible == want })
	}
	return listing.ApplyRequest(v, req, views), nil
}

// Hospitals lists registered hospitals. The category is the district.
func (a *App) Hospitals(ctx context.Context, token string, req listing.Request) (listing.Page[domain.Hospital], error) {
	hospitals, err := a.api.Hospitals(ctx, token)
	if err != nil {
		return listing.Page[domain.Hospital]{}, err
	}
	v := listing.NewView(a.pageSize,
		func(h domain.Hospital) string { return h.District },
		func(h domain.Hospital) string { return h.HospitalName },
		func(h domain.Hospital) string { return h.HeadOfHospital },
		func(h domain.Hospital) string { return h.Email },
		func(h domain.Hospital) string { return h.Address },
	)
	return listing.ApplyRequest(v, req, hospitals), nil
}

func appointmentView(pageSize int, counterpart func(domain.Appointment) string) *listing.View[domain.Appointment] {
	return listing.NewView(pageSize,
		func(ap domain.Appointment) string { return string(ap.Status) },
		counterpart,
		func(ap domain.Appointment) string { return ap.BloodType },
		func(ap domain.Appointment) string { return ap.Date },
	)
}

// HospitalAppointments lists a hospital's bookings. The category is the
// status; search covers donor name, blood type and date.
func (a *App) HospitalAppointments(ctx context.Context, token, hospitalID string, req listing.Request) (listing.Page[domain.Appointment], error) {
	items, err := a.api.HospitalAppointments(ctx, token, hospitalID)
	if err != nil {
		return listing.Page[domain.Appointment]{}, err
	}
	v := appointmentView(a.pageSize, func(ap domain.Appointment) string { return ap.DonorName })
	return listing.ApplyRequest(v, req, items), nil
}

// DonorAppointments lists a donor's bookings, searchable by hospital name.
func (a *App) DonorAppointments(ctx context.Context, token, donorID string, req listing.Request) (listing.Page[domain.Appointment], error) {
	items, err := a.api.DonorAppointments(ctx, token, donorID)
	if err != nil {
		return listing.Page[domain.Appointment]{}, err
	}
	v := appointmentView(a.pageSize, func(ap domain.Appointment) string { return ap.HospitalName })
	return listing.ApplyRequest(v, req, items), nil
}

func activityView(pageSize int) *listing.View[domain.Activity] {
	return listing.NewView(pageSize,
		func(ac domain.Activity) string { return ac.Type },
		func(ac domain.Activity) string { return ac.Description },
		func(ac domain.Activity) string { return ac.Actor },
	)
}

func (a *App) HospitalActivity(ctx context.Context, token, hospitalID string, req listing.Request) (listing.Page[domain.Activity], error) {
	items, err := a.api.HospitalActivity(ctx, token, hospitalID)
	if err != nil {
		return listing.Page[domain.Activity]{}, err
	}
	return listing.ApplyRequest(activityView(a.pageSize), req, items), nil
}

func (a *App) AdminActivity(ctx context.Context, token string, req listing.Request) (listing.Page[domain.Activity], error) {
	items, err := a.api.AdminActivity(ctx, token)
	if err != nil {
		return listing.Page[domain.Activity]{}, err
	}
	return listing.ApplyRequest(activityView(a.pageSize), req, items), nil
}

// HospitalRequests lists blood requests. The category is the status; search
// covers blood type, urgency and reason.
func (a *App) HospitalRequests(ctx context.Context, token, hospitalID string, req listing.Request) (listing.Page[domain.BloodRequest], error) {
	items, err := a.api.HospitalRequests(ctx, token, hospitalID)
	if err != nil {
		return listing.Page[domain.BloodRequest]{}, err
	}
	v := listing.NewView(a.pageSize,
		func(r domain.BloodRequest) string { return string(r.Status) },
		func(r domain.BloodRequest) string { return r.BloodType },
		func(r domain.BloodRequest) string { return string(r.Urgency) },
		func(r domain.BloodRequest) string { return r.Reason },
	)
	return listing.ApplyRequest(v, req, items), nil
}

// DonorDonations lists a donor's donation history, categorised by status.
func (a *App) DonorDonations(ctx context.Context, token, donorID string, req listing.Request) (listing.Page[domain.Donation], error) {
	items, err := a.api.DonorDonations(ctx, token, donorID)
	if err != nil {
		return listing.Page[domain.Donation]{}, err
	}
	v := listing.NewView(a.pageSize,
		func(d domain.Donation) string { return d.Status },
		func(d domain.Donation) string { return d.HospitalName },
		func(d domain.Donation) string { return d.BloodType },
	)
	return listing.ApplyRequest(v, req, items), nil
}
