package identity

import (
	"fmt"
	"strings"
	"time"
)

// Patient is a portal account holder, identified by health-card number.
// Identity is the natural key alone; two Patient values with the same card
// number describe the same person regardless of the other fields.
//
// Passwords are stored and compared in clear text because the portal reads
// legacy record files written that way. Known defect, kept for data
// compatibility.
type Patient struct {
	HealthCard string    `db:"health_card" json:"health_card"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	BirthDate  time.Time `db:"birth_date" json:"birth_date"`
	Phone      string    `db:"phone" json:"phone,omitempty"`
	Email      string    `db:"email" json:"email"`
	Conditions string    `db:"conditions" json:"conditions,omitempty"`
	Password   string    `db:"password" json:"password"`
}

// NewPatient validates the mandatory fields so an invalid Patient cannot be
// constructed through the front door.
func NewPatient(healthCard, firstName, lastName, email, password string) (Patient, error) {
	switch {
	case healthCard == "":
		return Patient{}, fmt.Errorf("health card number is required")
	case firstName == "" || lastName == "":
		return Patient{}, fmt.Errorf("first and last name are required")
	case email == "":
		return Patient{}, fmt.Errorf("email is required")
	case password == "":
		return Patient{}, fmt.Errorf("password is required")
	}
	return Patient{
		HealthCard: healthCard,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Password:   password,
	}, nil
}

// NaturalKey returns the health-card number.
func (p Patient) NaturalKey() string { return p.HealthCard }

// LoginEmail returns the authentication identifier.
func (p Patient) LoginEmail() string { return p.Email }

// LoginPassword returns the stored clear-text password.
func (p Patient) LoginPassword() string { return p.Password }

// DisplayName returns "First Last" for dashboards and notifications.
func (p Patient) DisplayName() string { return p.FirstName + " " + p.LastName }

// Specialist is a clinician account. In-process identity is the composite of
// name, email and specialization; backends additionally assign a numeric
// surrogate id that visits reference as their foreign key.
type Specialist struct {
	ID             int64     `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	BirthDate      time.Time `db:"birth_date" json:"birth_date"`
	Phone          string    `db:"phone" json:"phone,omitempty"`
	Email          string    `db:"email" json:"email"`
	Specialization string    `db:"specialization" json:"specialization"`
	Password       string    `db:"password" json:"password"`
}

// NewSpecialist validates the mandatory fields.
func NewSpecialist(firstName, lastName, email, specialization, password string) (Specialist, error) {
	switch {
	case firstName == "" || lastName == "":
		return Specialist{}, fmt.Errorf("first and last name are required")
	case email == "":
		return Specialist{}, fmt.Errorf("email is required")
	case specialization == "":
		return Specialist{}, fmt.Errorf("specialization is required")
	case password == "":
		return Specialist{}, fmt.Errorf("password is required")
	}
	return Specialist{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		Specialization: specialization,
		Password:       password,
	}, nil
}

// NaturalKey joins the composite identity fields. The surrogate id is
// deliberately excluded: it is backend-assigned, not part of identity.
func (s Specialist) NaturalKey() string {
	return strings.Join([]string{s.FirstName, s.LastName, s.Email, s.Specialization}, "|")
}

// LoginEmail returns the authentication identifier.
func (s Specialist) LoginEmail() string { return s.Email }

// LoginPassword returns the stored clear-text password.
func (s Specialist) LoginPassword() string { return s.Password }

// DisplayName returns "First Last" for dashboards and notifications.
func (s Specialist) DisplayName() string { return s.FirstName + " " + s.LastName }

// specializationFileName derives the file-backend document name from the
// specialization, lowercased with anything outside [a-z0-9-_] squashed to
// underscores.
func specializationFileName(s Specialist) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s.Specialization) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
