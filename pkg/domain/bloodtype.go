package domain

import "strings"

// BloodType is one of the eight canonical ABO/Rh groups.
type BloodType string

const (
	APositive  BloodType = "A+"
	ANegative  BloodType = "A-"
	BPositive  BloodType = "B+"
	BNegative  BloodType = "B-"
	OPositive  BloodType = "O+"
	ONegative  BloodType = "O-"
	ABPositive BloodType = "AB+"
	ABNegative BloodType = "AB-"
)

// BloodTypes lists the canonical set in display order. Callers must not modify it.
var BloodTypes = [...]BloodType{
	APositive, ANegative,
	BPositive, BNegative,
	OPositive, ONegative,
	ABPositive, ABNegative,
}

// Index returns the canonical position of t, or -1 when t is not canonical.
func (t BloodType) Index() int {
	for i, bt := range BloodTypes {
		if bt == t {
			return i
		}
	}
	return -1
}

// ParseBloodType normalises case and surrounding whitespace ("ab +" is not
// accepted, " ab+ " is). Anything outside the canonical set is rejected.
func ParseBloodType(raw string) (BloodType, bool) {
	t := BloodType(strings.ToUpper(strings.TrimSpace(raw)))
	if t.Index() < 0 {
		return "", false
	}
	return t, true
}
