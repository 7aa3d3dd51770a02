package booking

import (
	"context"
	"errors"
	"time"

	"github.com/clinicportal/clinicportal/internal/platform/notify"
)

var (
	// ErrSlotTaken means the requested (specialist, date, time) slot is
	// already booked, or this patient already holds that exact slot.
	ErrSlotTaken = errors.New("time slot already booked")

	// ErrVisitNotFound means no visit exists at the given natural key.
	ErrVisitNotFound = errors.New("visit not found")
)

// Service is the booking flow: validate, write through the repository, then
// fan the event out to the hub. The hub call is synchronous; Book does not
// return until every listener has seen the event.
type Service struct {
	visits *AppointmentRepository
	hub    *notify.Hub
}

// NewService wires the repository and the notification hub.
func NewService(visits *AppointmentRepository, hub *notify.Hub) *Service {
	return &Service{visits: visits, hub: hub}
}

// Book persists the visit and publishes the booking event. The visit must
// come from NewVisit; the patientName is carried into the event for display
// and may be empty.
func (s *Service) Book(ctx context.Context, v Visit, patientName string) (Visit, error) {
	if !s.visits.Save(ctx, v) {
		return Visit{}, ErrSlotTaken
	}
	s.hub.Publish(notify.Event{
		PatientKey:   v.PatientKey,
		PatientName:  patientName,
		SpecialistID: v.SpecialistID,
		Date:         v.Date,
		Time:         v.Time,
		Kind:         v.Kind,
		Reason:       v.Reason,
	})
	return v, nil
}

// Reject removes a visit by natural key. Rejection and cancellation are the
// same storage operation; who may call them is decided at the boundary.
func (s *Service) Reject(ctx context.Context, patientKey string, date time.Time, timeOfDay string) error {
	if !s.visits.Delete(ctx, Template(patientKey, date, timeOfDay)) {
		return ErrVisitNotFound
	}
	return nil
}

// Confirm transitions a booked visit to confirmed.
func (s *Service) Confirm(ctx context.Context, patientKey string, date time.Time, timeOfDay string) (Visit, error) {
	v, ok := s.visits.Find(ctx, Template(patientKey, date, timeOfDay))
	if !ok {
		return Visit{}, ErrVisitNotFound
	}
	v.Status = StatusConfirmed
	if !s.visits.Update(ctx, v) {
		return Visit{}, ErrVisitNotFound
	}
	return v, nil
}

// ListForPatient returns the patient's visits.
func (s *Service) ListForPatient(ctx context.Context, patientKey string) []Visit {
	return s.visits.FindByPatient(ctx, patientKey)
}

// ListForSpecialist returns the specialist's full agenda.
func (s *Service) ListForSpecialist(ctx context.Context, specialistID int64) []Visit {
	return s.visits.FindBySpecialist(ctx, specialistID)
}

// Agenda returns the specialist's visits for one day.
func (s *Service) Agenda(ctx context.Context, specialistID int64, date time.Time) []Visit {
	return s.visits.FindByDateAndSpecialist(ctx, date, specialistID)
}

// Notifications returns the booking events addressed to one specialist.
func (s *Service) Notifications(specialistID int64) []notify.Event {
	return s.hub.ForSpecialist(specialistID)
}
