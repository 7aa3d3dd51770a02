package booking

import (
	"fmt"
	"strings"
	"time"
)

// Visit kinds and lifecycle states.
const (
	KindOnline   = "Online"
	KindInPerson = "In-person"

	StatusBooked    = "Booked"
	StatusConfirmed = "Confirmed"
)

// Visit is one booking. Its natural key is (patient key, date, time); the
// specialist is referenced by the numeric surrogate id the backends assign.
type Visit struct {
	PatientKey   string    `db:"patient_key" json:"patient_key"`
	Date         time.Time `db:"visit_date" json:"date"`
	Time         string    `db:"visit_time" json:"time"`
	SpecialistID int64     `db:"specialist_id" json:"specialist_id"`
	Kind         string    `db:"kind" json:"kind"`
	Reason       string    `db:"reason" json:"reason,omitempty"`
	Status       string    `db:"status" json:"status"`
}

// NewVisit validates the mandatory fields and normalizes the date to
// midnight UTC, so a Visit that exists is always well-formed.
func NewVisit(patientKey string, date time.Time, timeOfDay string, specialistID int64, kind, reason string) (Visit, error) {
	switch {
	case patientKey == "":
		return Visit{}, fmt.Errorf("patient is required")
	case date.IsZero():
		return Visit{}, fmt.Errorf("date is required")
	case specialistID <= 0:
		return Visit{}, fmt.Errorf("specialist is required")
	}
	if _, err := time.Parse("15:04", timeOfDay); err != nil {
		return Visit{}, fmt.Errorf("time must be HH:MM, got %q", timeOfDay)
	}
	if kind != KindOnline && kind != KindInPerson {
		return Visit{}, fmt.Errorf("kind must be %q or %q, got %q", KindOnline, KindInPerson, kind)
	}
	return Visit{
		PatientKey:   patientKey,
		Date:         truncateToDay(date),
		Time:         timeOfDay,
		SpecialistID: specialistID,
		Kind:         kind,
		Reason:       reason,
		Status:       StatusBooked,
	}, nil
}

// Template builds a lookup/removal template carrying only the natural key.
func Template(patientKey string, date time.Time, timeOfDay string) Visit {
	return Visit{PatientKey: patientKey, Date: truncateToDay(date), Time: timeOfDay}
}

// NaturalKey is patientKey|YYYY-MM-DD|HH:MM.
func (v Visit) NaturalKey() string {
	return strings.Join([]string{v.PatientKey, v.Date.Format("2006-01-02"), v.Time}, "|")
}

// fileName is patientKey_YYYYMMDD_HHmm, the file-backend document name.
func fileName(v Visit) string {
	return fmt.Sprintf("%s_%s_%s", v.PatientKey, v.Date.Format("20060102"),
		strings.ReplaceAll(v.Time, ":", ""))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
