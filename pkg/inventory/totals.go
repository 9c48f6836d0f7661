package inventory

import (
	"bytes"
	"strconv"

	"givelife/pkg/domain"
)

const numTypes = len(domain.BloodTypes)

// Totals holds summed units per canonical blood type, indexed in the order of
// domain.BloodTypes. The zero value is a valid all-zero total.
type Totals [numTypes]int

// Entry is one (blood type, units) pair of a Totals.
type Entry struct {
	BloodType domain.BloodType `json:"bloodType"`
	Units     int              `json:"units"`
}

// Sum folds inventory rows into totals. Rows whose blood type is not exactly
// one of the canonical eight ("ab-" and " O+" included) are dropped and
// counted in skipped.
func Sum(rows []domain.InventoryRow) (t Totals, skipped int) {
	for _, row := range rows {
		i := domain.BloodType(row.BloodType).Index()
		if i < 0 {
			skipped++
			continue
		}
		t[i] += row.UnitsAvailable
	}
	return t, skipped
}

// Get returns the units for bt, or 0 for a non-canonical type.
func (t Totals) Get(bt domain.BloodType) int {
	i := bt.Index()
	if i < 0 {
		return 0
	}
	return t[i]
}

// Add returns the pointwise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	for i := range t {
		t[i] += o[i]
	}
	return t
}

// Total returns the units across every blood type.
func (t Totals) Total() int {
	n := 0
	for _, v := range t {
		n += v
	}
	return n
}

// Entries lists the totals in canonical order.
func (t Totals) Entries() []Entry {
	out := make([]Entry, 0, numTypes)
	for i, bt := range domain.BloodTypes {
		out = append(out, Entry{BloodType: bt, Units: t[i]})
	}
	return out
}

// MarshalJSON encodes an object keyed by blood type, keys in canonical order
// so chart consumers get a stable series.
func (t Totals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bt := range domain.BloodTypes {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(string(bt)))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(t[i]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// LowStock returns the rows at or below their critical level, in canonical
// blood-type order. Non-canonical rows are ignored.
func LowStock(rows []domain.InventoryRow) []domain.InventoryRow {
	var buckets [numTypes][]domain.InventoryRow
	for _, row := range rows {
		i := domain.BloodType(row.BloodType).Index()
		if i < 0 || row.UnitsAvailable > row.CriticalLevel {
			continue
		}
		buckets[i] = append(buckets[i], row)
	}
	var out []domain.InventoryRow
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}
