package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/clinicportal/internal/domain/identity"
	"github.com/clinicportal/clinicportal/internal/platform/auth"
)

type Handler struct {
	svc *Service
	ids *identity.Service
}

func NewHandler(svc *Service, ids *identity.Service) *Handler {
	return &Handler{svc: svc, ids: ids}
}

// RegisterRoutes wires the patient-side booking endpoints and the
// specialist-side agenda endpoints on the authenticated group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	patient := api.Group("", auth.RequireKind(string(identity.ActorPatient)))
	patient.POST("/visits", h.Book)
	patient.GET("/visits", h.ListOwnVisits)
	patient.DELETE("/visits", h.CancelOwnVisit)

	specialist := api.Group("", auth.RequireKind(string(identity.ActorSpecialist)))
	specialist.GET("/agenda", h.Agenda)
	specialist.DELETE("/agenda/visits", h.RejectVisit)
	specialist.POST("/agenda/visits/confirm", h.ConfirmVisit)
	specialist.GET("/notifications", h.Notifications)
}

type bookRequest struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	SpecialistID int64  `json:"specialist_id"`
	Kind         string `json:"kind"`
	Reason       string `json:"reason"`
}

// Book creates a visit for the calling patient and fans the event out. The
// owning patient comes from the token, never the body.
func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	key, _ := c.Get(auth.CtxKey).(string)
	v, err := NewVisit(key, date, req.Time, req.SpecialistID, req.Kind, req.Reason)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var patientName string
	if p, ok := h.ids.GetPatient(c.Request().Context(), key); ok {
		patientName = p.DisplayName()
	}
	booked, err := h.svc.Book(c.Request().Context(), v, patientName)
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, booked)
}

func (h *Handler) ListOwnVisits(c echo.Context) error {
	key, _ := c.Get(auth.CtxKey).(string)
	return c.JSON(http.StatusOK, h.svc.ListForPatient(c.Request().Context(), key))
}

// CancelOwnVisit removes one of the caller's visits, addressed by the
// date and time query parameters.
func (h *Handler) CancelOwnVisit(c echo.Context) error {
	key, _ := c.Get(auth.CtxKey).(string)
	date, timeOfDay, err := visitKeyParams(c)
	if err != nil {
		return err
	}
	if err := h.svc.Reject(c.Request().Context(), key, date, timeOfDay); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Agenda lists the calling specialist's visits, for one day when ?date= is
// given, otherwise all of them.
func (h *Handler) Agenda(c echo.Context) error {
	sp, err := h.callingSpecialist(c)
	if err != nil {
		return err
	}
	if d := c.QueryParam("date"); d != "" {
		date, perr := time.Parse("2006-01-02", d)
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		return c.JSON(http.StatusOK, h.svc.Agenda(c.Request().Context(), sp.ID, date))
	}
	return c.JSON(http.StatusOK, h.svc.ListForSpecialist(c.Request().Context(), sp.ID))
}

// RejectVisit removes any visit by its natural key, taken from the patient,
// date and time query parameters.
func (h *Handler) RejectVisit(c echo.Context) error {
	patient := c.QueryParam("patient")
	if patient == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient query parameter is required")
	}
	date, timeOfDay, err := visitKeyParams(c)
	if err != nil {
		return err
	}
	if err := h.svc.Reject(c.Request().Context(), patient, date, timeOfDay); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type confirmRequest struct {
	Patient string `json:"patient"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

func (h *Handler) ConfirmVisit(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	v, err := h.svc.Confirm(c.Request().Context(), req.Patient, date, req.Time)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Notifications(c echo.Context) error {
	sp, err := h.callingSpecialist(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.svc.Notifications(sp.ID))
}

func (h *Handler) callingSpecialist(c echo.Context) (identity.Specialist, error) {
	email, _ := c.Get(auth.CtxEmail).(string)
	sp, ok := h.ids.GetSpecialistByEmail(c.Request().Context(), email)
	if !ok {
		return identity.Specialist{}, echo.NewHTTPError(http.StatusUnauthorized, "unknown specialist")
	}
	return sp, nil
}

func visitKeyParams(c echo.Context) (time.Time, string, error) {
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return time.Time{}, "", echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	timeOfDay := c.QueryParam("time")
	if timeOfDay == "" {
		return time.Time{}, "", echo.NewHTTPError(http.StatusBadRequest, "time query parameter is required")
	}
	return date, timeOfDay, nil
}
