package identity

import (
	"context"
	"errors"
	"fmt"
)

// ActorKind tags which of the two authenticable identities a credential pair
// resolved to.
type ActorKind string

const (
	ActorPatient    ActorKind = "patient"
	ActorSpecialist ActorKind = "specialist"
)

// ErrInvalidCredentials is the single undifferentiated authentication
// failure. Unknown email, wrong password and storage faults are deliberately
// indistinguishable; downstream screens depend on that opacity.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Login is a successful authentication, tagged with the actor kind. Exactly
// one of Patient/Specialist is populated, matching Kind.
type Login struct {
	Kind       ActorKind
	Patient    Patient
	Specialist Specialist
}

// Service resolves which actor kind a credential pair belongs to without
// being told, and owns account registration.
type Service struct {
	patients    *UserRepository[Patient]
	specialists *UserRepository[Specialist]
}

// NewService wires the two account repositories.
func NewService(patients *UserRepository[Patient], specialists *UserRepository[Specialist]) *Service {
	return &Service{patients: patients, specialists: specialists}
}

// Authenticate tries the patient repository first, then the specialist one.
// The ordering is a fixed tie-break: were the same credentials ever valid
// for both kinds, the patient identity wins.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Login, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if p, ok := s.patients.Authenticate(ctx, email, password); ok {
		return &Login{Kind: ActorPatient, Patient: p}, nil
	}
	if sp, ok := s.specialists.Authenticate(ctx, email, password); ok {
		return &Login{Kind: ActorSpecialist, Specialist: sp}, nil
	}
	return nil, ErrInvalidCredentials
}

// RegisterPatient stores a new patient account. Email uniqueness is checked
// here so every backend enforces it, not just the one with a database index.
func (s *Service) RegisterPatient(ctx context.Context, p Patient) error {
	if _, taken := s.patients.FindByEmail(ctx, p.Email); taken {
		return fmt.Errorf("email %s already registered", p.Email)
	}
	if !s.patients.Save(ctx, p) {
		return fmt.Errorf("patient %s already registered", p.HealthCard)
	}
	return nil
}

// RegisterSpecialist stores a new specialist account, with the same
// service-level email uniqueness as RegisterPatient. The stored record is
// re-read so the caller sees the backend-assigned surrogate id.
func (s *Service) RegisterSpecialist(ctx context.Context, sp Specialist) (Specialist, error) {
	if _, taken := s.specialists.FindByEmail(ctx, sp.Email); taken {
		return Specialist{}, fmt.Errorf("email %s already registered", sp.Email)
	}
	if !s.specialists.Save(ctx, sp) {
		return Specialist{}, fmt.Errorf("specialist %s already registered", sp.Email)
	}
	stored, ok := s.specialists.Find(ctx, sp)
	if !ok {
		return sp, nil
	}
	return stored, nil
}

// GetPatient fetches a patient by health-card number.
func (s *Service) GetPatient(ctx context.Context, healthCard string) (Patient, bool) {
	return s.patients.Find(ctx, Patient{HealthCard: healthCard})
}

// GetSpecialistByID resolves the numeric surrogate id to a record. The
// backends index by natural key, so this is a scan; specialist counts are
// small.
func (s *Service) GetSpecialistByID(ctx context.Context, id int64) (Specialist, bool) {
	for _, sp := range s.specialists.GetAll(ctx) {
		if sp.ID == id {
			return sp, true
		}
	}
	return Specialist{}, false
}

// GetSpecialistByEmail fetches a specialist by login email.
func (s *Service) GetSpecialistByEmail(ctx context.Context, email string) (Specialist, bool) {
	return s.specialists.FindByEmail(ctx, email)
}

// ListSpecialists returns every specialist, for the booking screens.
func (s *Service) ListSpecialists(ctx context.Context) []Specialist {
	return s.specialists.GetAll(ctx)
}
