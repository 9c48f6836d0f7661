package domain

import "time"

const (
	dateLayout = "2006-01-02"
	slotLayout = "15:04"
)

// FreeSlots filters the offered HH:MM slots for date down to the ones that
// are not held by a non-cancelled appointment on that date. When date is
// today (in now's location) only slots starting after now are kept.
// Input order is preserved.
func FreeSlots(all []string, booked []Appointment, date string, now time.Time) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, a := range booked {
		if a.Date != date || a.Status == AppointmentCancelled {
			continue
		}
		taken[a.Time] = struct{}{}
	}
	today := now.Format(dateLayout) == date
	out := make([]string, 0, len(all))
	for _, slot := range all {
		if _, ok := taken[slot]; ok {
			continue
		}
		if today {
			at, err := time.ParseInLocation(dateLayout+" "+slotLayout, date+" "+slot, now.Location())
			if err != nil || !at.After(now) {
				continue
			}
		}
		out = append(out, slot)
	}
	return out
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
