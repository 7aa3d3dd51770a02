package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/clinicportal/internal/platform/auth"
	"github.com/clinicportal/clinicportal/internal/platform/session"
)

type Handler struct {
	svc    *Service
	tokens *auth.TokenIssuer
}

func NewHandler(svc *Service, tokens *auth.TokenIssuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// RegisterRoutes wires the public endpoints on the bare server and the
// session-bound ones on the authenticated group.
func (h *Handler) RegisterRoutes(e *echo.Echo, api *echo.Group) {
	e.POST("/auth/login", h.Login)
	e.POST("/patients", h.RegisterPatient)
	e.POST("/specialists", h.RegisterSpecialist)

	api.POST("/auth/logout", h.Logout)
	api.GET("/profile", h.Profile)
	api.GET("/specialists", h.ListSpecialists)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	Kind  ActorKind   `json:"kind"`
	User  interface{} `json:"user"`
}

// Login authenticates, installs the process-wide session for the resolved
// actor kind, and returns a bearer token. Every failure is the same 401.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	login, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
	}

	var (
		key   string
		email string
		user  interface{}
	)
	switch login.Kind {
	case ActorPatient:
		p := login.Patient
		key, email, user = p.HealthCard, p.Email, p
		session.Patients().Set(session.Identity{
			Kind: string(ActorPatient), Key: key, Name: p.DisplayName(), Email: email,
		})
	case ActorSpecialist:
		sp := login.Specialist
		key, email, user = sp.NaturalKey(), sp.Email, sp
		session.Specialists().Set(session.Identity{
			Kind: string(ActorSpecialist), Key: key, Name: sp.DisplayName(),
			Email: email, SpecialistID: sp.ID,
		})
	}

	token, err := h.tokens.Issue(key, string(login.Kind), email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "token issue failed")
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, Kind: login.Kind, User: user})
}

// Logout clears the session slot for the caller's actor kind.
func (h *Handler) Logout(c echo.Context) error {
	switch c.Get(auth.CtxKind) {
	case string(ActorPatient):
		session.Patients().Clear()
	case string(ActorSpecialist):
		session.Specialists().Clear()
	}
	return c.NoContent(http.StatusNoContent)
}

// Profile returns the active session identity for the caller's kind. A
// valid token with no live session is a conflict the client resolves by
// logging in again.
func (h *Handler) Profile(c echo.Context) error {
	slot := session.Patients()
	if c.Get(auth.CtxKind) == string(ActorSpecialist) {
		slot = session.Specialists()
	}
	id, err := slot.Get()
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, id)
}

type registerPatientRequest struct {
	HealthCard string `json:"health_card"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	BirthDate  string `json:"birth_date"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Conditions string `json:"conditions"`
	Password   string `json:"password"`
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var req registerPatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := NewPatient(req.HealthCard, req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.Phone = req.Phone
	p.Conditions = req.Conditions
	if req.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
		}
		p.BirthDate = bd
	}
	if err := h.svc.RegisterPatient(c.Request().Context(), p); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

type registerSpecialistRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	BirthDate      string `json:"birth_date"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	Password       string `json:"password"`
}

func (h *Handler) RegisterSpecialist(c echo.Context) error {
	var req registerSpecialistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sp, err := NewSpecialist(req.FirstName, req.LastName, req.Email, req.Specialization, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sp.Phone = req.Phone
	if req.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
		}
		sp.BirthDate = bd
	}
	stored, err := h.svc.RegisterSpecialist(c.Request().Context(), sp)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusCreated, stored)
}

func (h *Handler) ListSpecialists(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ListSpecialists(c.Request().Context()))
}
