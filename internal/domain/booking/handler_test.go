package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/clinicportal/internal/domain/identity"
	"github.com/clinicportal/clinicportal/internal/platform/auth"
	"github.com/clinicportal/clinicportal/internal/platform/notify"
)

type bookingFixture struct {
	handler *Handler
	ids     *identity.Service
	spec    identity.Specialist
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	ids := identity.NewService(
		identity.NewUserRepository(identity.NewPatientRAMStore()),
		identity.NewUserRepository(identity.NewSpecialistRAMStore()),
	)
	ctx := context.Background()
	if err := ids.RegisterPatient(ctx, identity.Patient{
		HealthCard: "AAA", FirstName: "Anna", LastName: "Rossi", Email: "anna@x.com", Password: "pw",
	}); err != nil {
		t.Fatal(err)
	}
	sp, err := ids.RegisterSpecialist(ctx, identity.Specialist{
		FirstName: "Luca", LastName: "Bianchi", Email: "luca@x.com", Specialization: "Cardiologia", Password: "pw",
	})
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(NewAppointmentRepository(NewVisitRAMStore()), notify.NewHub())
	return &bookingFixture{handler: NewHandler(svc, ids), ids: ids, spec: sp}
}

func patientContext(method, target, body string) echo.Context {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set(auth.CtxKind, string(identity.ActorPatient))
	c.Set(auth.CtxKey, "AAA")
	c.Set(auth.CtxEmail, "anna@x.com")
	return c
}

func specialistContext(method, target, body string) echo.Context {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set(auth.CtxKind, string(identity.ActorSpecialist))
	c.Set(auth.CtxEmail, "luca@x.com")
	return c
}

func (f *bookingFixture) book(t *testing.T, date, timeOfDay string) {
	t.Helper()
	c := patientContext(http.MethodPost, "/visits",
		`{"date":"`+date+`","time":"`+timeOfDay+`","specialist_id":1,"kind":"Online","reason":"checkup"}`)
	if err := f.handler.Book(c); err != nil {
		t.Fatalf("book %s %s: %v", date, timeOfDay, err)
	}
}

func TestHandler_BookOwnsVisitViaToken(t *testing.T) {
	f := newBookingFixture(t)

	c := patientContext(http.MethodPost, "/visits",
		`{"date":"2026-03-14","time":"10:30","specialist_id":1,"kind":"Online","reason":"checkup"}`)
	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	if err := f.handler.Book(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var v Visit
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.PatientKey != "AAA" {
		t.Errorf("visit owner must come from the token, got %q", v.PatientKey)
	}
	if v.Status != StatusBooked {
		t.Errorf("status = %q", v.Status)
	}
}

func TestHandler_BookConflictIs409(t *testing.T) {
	f := newBookingFixture(t)
	f.book(t, "2026-03-14", "10:30")

	c := patientContext(http.MethodPost, "/visits",
		`{"date":"2026-03-14","time":"10:30","specialist_id":1,"kind":"In-person","reason":""}`)
	err := f.handler.Book(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusConflict {
		t.Errorf("taken slot: expected 409, got %v", err)
	}
}

func TestHandler_BookRejectsBadInput(t *testing.T) {
	f := newBookingFixture(t)
	cases := []struct{ name, body string }{
		{"bad date", `{"date":"14/03/2026","time":"10:30","specialist_id":1,"kind":"Online"}`},
		{"bad time", `{"date":"2026-03-14","time":"1030","specialist_id":1,"kind":"Online"}`},
		{"bad kind", `{"date":"2026-03-14","time":"10:30","specialist_id":1,"kind":"Maybe"}`},
		{"no specialist", `{"date":"2026-03-14","time":"10:30","kind":"Online"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.handler.Book(patientContext(http.MethodPost, "/visits", tc.body))
			if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %v", err)
			}
		})
	}
}

func TestHandler_CancelOwnVisit(t *testing.T) {
	f := newBookingFixture(t)
	f.book(t, "2026-03-14", "10:30")

	c := patientContext(http.MethodDelete, "/visits?date=2026-03-14&time=10:30", "")
	if err := f.handler.CancelOwnVisit(c); err != nil {
		t.Fatal(err)
	}

	c = patientContext(http.MethodDelete, "/visits?date=2026-03-14&time=10:30", "")
	err := f.handler.CancelOwnVisit(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Errorf("cancelling twice: expected 404, got %v", err)
	}
}

func TestHandler_AgendaFiltersByDate(t *testing.T) {
	f := newBookingFixture(t)
	f.book(t, "2026-03-14", "10:30")
	f.book(t, "2026-03-15", "09:00")

	c := specialistContext(http.MethodGet, "/agenda?date=2026-03-14", "")
	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	if err := f.handler.Agenda(c); err != nil {
		t.Fatal(err)
	}
	var day []Visit
	if err := json.Unmarshal(rec.Body.Bytes(), &day); err != nil {
		t.Fatal(err)
	}
	if len(day) != 1 || day[0].Time != "10:30" {
		t.Errorf("day agenda = %+v", day)
	}

	c = specialistContext(http.MethodGet, "/agenda", "")
	rec = c.Response().Writer.(*httptest.ResponseRecorder)
	if err := f.handler.Agenda(c); err != nil {
		t.Fatal(err)
	}
	var all []Visit
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("full agenda has %d visits, want 2", len(all))
	}
}

func TestHandler_ConfirmAndRejectVisit(t *testing.T) {
	f := newBookingFixture(t)
	f.book(t, "2026-03-14", "10:30")

	c := specialistContext(http.MethodPost, "/agenda/visits/confirm",
		`{"patient":"AAA","date":"2026-03-14","time":"10:30"}`)
	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	if err := f.handler.ConfirmVisit(c); err != nil {
		t.Fatal(err)
	}
	var v Visit
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.Status != StatusConfirmed {
		t.Errorf("status = %q, want %q", v.Status, StatusConfirmed)
	}

	c = specialistContext(http.MethodDelete, "/agenda/visits?patient=AAA&date=2026-03-14&time=10:30", "")
	if err := f.handler.RejectVisit(c); err != nil {
		t.Fatal(err)
	}

	c = specialistContext(http.MethodDelete, "/agenda/visits?date=2026-03-14&time=10:30", "")
	err := f.handler.RejectVisit(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("missing patient param: expected 400, got %v", err)
	}
}

func TestHandler_NotificationsForCallingSpecialist(t *testing.T) {
	f := newBookingFixture(t)
	f.book(t, "2026-03-14", "10:30")

	c := specialistContext(http.MethodGet, "/notifications", "")
	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	if err := f.handler.Notifications(c); err != nil {
		t.Fatal(err)
	}
	var events []notify.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].PatientName != "Anna Rossi" {
		t.Errorf("notifications = %+v", events)
	}
}
