package domain

import "time"

// DonationIntervalMonths is the minimum number of whole calendar months
// between two whole-blood donations.
const DonationIntervalMonths = 3

// EligibilityStatus describes whether a donor may donate again.
type EligibilityStatus struct {
	Eligible     bool      `json:"eligible"`
	NeverDonated bool      `json:"neverDonated,omitempty"`
	MonthsSince  int       `json:"monthsSince"`
	NextEligible time.Time `json:"nextEligible,omitzero"`
}

// Eligibility derives donor eligibility from the month/year of the last
// donation. Month must be 1..12; a zero or out-of-range month or a zero year
// counts as no recorded donation.
func Eligibility(lastMonth, lastYear int, now time.Time) EligibilityStatus {
	if lastYear <= 0 || lastMonth < 1 || lastMonth > 12 {
		return EligibilityStatus{Eligible: true, NeverDonated: true}
	}
	since := monthIndex(now.Year(), int(now.Month())) - monthIndex(lastYear, lastMonth)
	next := time.Date(lastYear, time.Month(lastMonth)+DonationIntervalMonths, 1, 0, 0, 0, 0, now.Location())
	if since < 0 {
		return EligibilityStatus{Eligible: false, MonthsSince: 0, NextEligible: next}
	}
	return EligibilityStatus{
		Eligible:     since >= DonationIntervalMonths,
		MonthsSince:  since,
		NextEligible: next,
	}
}

// DonorEligibility is a convenience wrapper over Eligibility for a donor record.
func DonorEligibility(d Donor, now time.Time) EligibilityStatus {
	return Eligibility(d.LastDonationMonth, d.LastDonationYear, now)
}

func monthIndex(year, month int) int {
	return year*12 + (month - 1)
}
