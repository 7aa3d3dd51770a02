package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clinicportal/clinicportal/internal/platform/notify"
)

type captureListener struct {
	events []notify.Event
}

func (l *captureListener) Update(e notify.Event) {
	l.events = append(l.events, e)
}

func newTestBooking() (*Service, *captureListener) {
	hub := notify.NewHub()
	cap := &captureListener{}
	hub.Attach(cap)
	return NewService(NewAppointmentRepository(NewVisitRAMStore()), hub), cap
}

func TestService_BookPublishesEvent(t *testing.T) {
	svc, cap := newTestBooking()
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	v := mustVisit(t, "AAA", day, "10:30", 1)
	v.Reason = "checkup"
	booked, err := svc.Book(ctx, v, "Anna Rossi")
	if err != nil {
		t.Fatal(err)
	}
	if booked.Status != StatusBooked {
		t.Errorf("booked visit status = %q", booked.Status)
	}

	if len(cap.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(cap.events))
	}
	e := cap.events[0]
	if e.PatientKey != "AAA" || e.PatientName != "Anna Rossi" || e.SpecialistID != 1 ||
		e.Time != "10:30" || e.Kind != KindOnline || e.Reason != "checkup" {
		t.Errorf("event carries wrong booking data: %+v", e)
	}
}

func TestService_BookSlotTakenPublishesNothing(t *testing.T) {
	svc, cap := newTestBooking()
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Book(ctx, mustVisit(t, "AAA", day, "10:30", 1), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Book(ctx, mustVisit(t, "BBB", day, "10:30", 1), ""); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("expected ErrSlotTaken, got %v", err)
	}
	if len(cap.events) != 1 {
		t.Errorf("a refused booking must not publish, got %d events", len(cap.events))
	}
}

func TestService_RejectAndConfirm(t *testing.T) {
	svc, _ := newTestBooking()
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	if err := svc.Reject(ctx, "AAA", day, "10:30"); !errors.Is(err, ErrVisitNotFound) {
		t.Errorf("rejecting an absent visit: got %v", err)
	}
	if _, err := svc.Confirm(ctx, "AAA", day, "10:30"); !errors.Is(err, ErrVisitNotFound) {
		t.Errorf("confirming an absent visit: got %v", err)
	}

	svc.Book(ctx, mustVisit(t, "AAA", day, "10:30", 1), "")
	v, err := svc.Confirm(ctx, "AAA", day, "10:30")
	if err != nil {
		t.Fatal(err)
	}
	if v.Status != StatusConfirmed {
		t.Errorf("confirm left status %q", v.Status)
	}
	if err := svc.Reject(ctx, "AAA", day, "10:30"); err != nil {
		t.Errorf("rejecting an existing visit: %v", err)
	}
	if got := svc.ListForPatient(ctx, "AAA"); len(got) != 0 {
		t.Errorf("patient list should be empty after reject, got %+v", got)
	}
}

func TestService_AgendaAndNotifications(t *testing.T) {
	svc, _ := newTestBooking()
	ctx := context.Background()
	day1 := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	svc.Book(ctx, mustVisit(t, "AAA", day1, "10:30", 1), "Anna Rossi")
	svc.Book(ctx, mustVisit(t, "BBB", day2, "09:00", 1), "Bruno Neri")
	svc.Book(ctx, mustVisit(t, "CCC", day1, "10:30", 2), "Carla Blu")

	if got := svc.ListForSpecialist(ctx, 1); len(got) != 2 {
		t.Errorf("full agenda for specialist 1: %d visits, want 2", len(got))
	}
	if got := svc.Agenda(ctx, 1, day1); len(got) != 1 || got[0].PatientKey != "AAA" {
		t.Errorf("day agenda for specialist 1: %+v", got)
	}

	events := svc.Notifications(1)
	if len(events) != 2 {
		t.Fatalf("specialist 1 should have 2 notifications, got %d", len(events))
	}
	if events[0].PatientName != "Anna Rossi" || events[1].PatientName != "Bruno Neri" {
		t.Error("notifications must keep booking order")
	}
	if len(svc.Notifications(99)) != 0 {
		t.Error("unknown specialist should have no notifications")
	}
}
