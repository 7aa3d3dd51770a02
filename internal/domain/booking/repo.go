package booking

import (
	"context"
	"sync"
	"time"

	"github.com/clinicportal/clinicportal/internal/platform/storage"
)

// indexedQueries is the optional fast path a backend may offer for the
// specialist-shaped lookups. The relational store implements it; the RAM and
// file stores do not and are scanned instead.
type indexedQueries interface {
	FindBySpecialist(ctx context.Context, specialistID int64) []Visit
	FindByDateAndSpecialist(ctx context.Context, date time.Time, specialistID int64) []Visit
}

// AppointmentRepository adapts the raw visit store to the domain's query
// shapes and owns the no-double-booking invariant: a (specialist, date,
// time) tuple is booked at most once, whichever backend is underneath.
// Whether the backend has an indexed path is decided once, here, at
// construction; call sites never inspect the store again.
type AppointmentRepository struct {
	mu    sync.Mutex
	store storage.Store[Visit]
	idx   indexedQueries
}

// NewAppointmentRepository wraps the given store.
func NewAppointmentRepository(store storage.Store[Visit]) *AppointmentRepository {
	r := &AppointmentRepository{store: store}
	if q, ok := store.(indexedQueries); ok {
		r.idx = q
	}
	return r
}

// Save persists a new visit. It refuses both a duplicate natural key and a
// second visit holding the same specialist slot. The mutex spans the slot
// check and the write so racing bookings by different patients serialize
// here; the relational backend additionally enforces the slot with a unique
// index, which also covers writers in other processes.
func (r *AppointmentRepository) Save(ctx context.Context, v Visit) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, booked := range r.FindByDateAndSpecialist(ctx, v.Date, v.SpecialistID) {
		if booked.Time == v.Time {
			return false
		}
	}
	return r.store.Save(ctx, v)
}

// Find looks up by the natural key embedded in the template.
func (r *AppointmentRepository) Find(ctx context.Context, tmpl Visit) (Visit, bool) {
	return r.store.Find(ctx, tmpl)
}

// Update overwrites an existing visit, typically a status transition.
func (r *AppointmentRepository) Update(ctx context.Context, v Visit) bool {
	return r.store.Update(ctx, v)
}

// Delete removes the visit at the template's key.
func (r *AppointmentRepository) Delete(ctx context.Context, tmpl Visit) bool {
	return r.store.Delete(ctx, tmpl)
}

// GetAll returns every visit; ordering is backend-dependent.
func (r *AppointmentRepository) GetAll(ctx context.Context) []Visit {
	return r.store.GetAll(ctx)
}

// FindByPatient returns the visits owned by one patient.
func (r *AppointmentRepository) FindByPatient(ctx context.Context, patientKey string) []Visit {
	var out []Visit
	for _, v := range r.store.GetAll(ctx) {
		if v.PatientKey == patientKey {
			out = append(out, v)
		}
	}
	return out
}

// FindBySpecialist returns the visits referencing one specialist. Result
// ordering is not guaranteed to match across backends.
func (r *AppointmentRepository) FindBySpecialist(ctx context.Context, specialistID int64) []Visit {
	if r.idx != nil {
		return r.idx.FindBySpecialist(ctx, specialistID)
	}
	var out []Visit
	for _, v := range r.store.GetAll(ctx) {
		if v.SpecialistID == specialistID {
			out = append(out, v)
		}
	}
	return out
}

// FindByDateAndSpecialist narrows FindBySpecialist to one calendar day.
func (r *AppointmentRepository) FindByDateAndSpecialist(ctx context.Context, date time.Time, specialistID int64) []Visit {
	if r.idx != nil {
		return r.idx.FindByDateAndSpecialist(ctx, date, specialistID)
	}
	var out []Visit
	for _, v := range r.store.GetAll(ctx) {
		if v.SpecialistID == specialistID && sameDay(v.Date, date) {
			out = append(out, v)
		}
	}
	return out
}
